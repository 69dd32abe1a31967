// Package logging points the standard logger at a size-rotated file.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options describe the log file.
type Options struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	// Verbose mirrors log output to stderr. Leave it off while the TUI owns
	// the terminal.
	Verbose bool
}

// Setup sends the standard logger to a rotating file and returns a closer
// that flushes it. The previous output is restored on close.
func Setup(opts Options) (io.Closer, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	var out io.Writer = file
	if opts.Verbose {
		out = io.MultiWriter(file, os.Stderr)
	}
	prev := log.Writer()
	prevFlags := log.Flags()
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags)
	return closer{file: file, restore: func() {
		log.SetOutput(prev)
		log.SetFlags(prevFlags)
	}}, nil
}

type closer struct {
	file    *lumberjack.Logger
	restore func()
}

func (c closer) Close() error {
	c.restore()
	return c.file.Close()
}
