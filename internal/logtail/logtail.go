package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
)

// Read returns at most maxLines from the end of the file at path. maxLines
// <= 0 returns every line. A missing file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Grep keeps the lines containing query, ignoring case. An empty query keeps
// everything.
func Grep(lines []string, query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return lines
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), query) {
			out = append(out, line)
		}
	}
	return out
}

var (
	stampRe   = regexp.MustCompile(`^(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2})(.*)$`)
	problemRe = regexp.MustCompile(`(?i)\b(error|failed|failure|refused|timeout)\b`)

	stampColor   = color.New(color.FgHiBlack)
	problemColor = color.New(color.FgHiRed, color.Bold)
	pathColor    = color.New(color.FgCyan)
	pathRe       = regexp.MustCompile(`(?:https?://|/)[^\s:]+`)
)

// ColorizeLine highlights the timestamp, router paths and URLs, and words
// that signal a failure in one line of fediscope's log.
func ColorizeLine(line string) string {
	if strings.TrimSpace(line) == "" {
		return line
	}
	stamp, rest := "", line
	if m := stampRe.FindStringSubmatch(line); m != nil {
		stamp, rest = m[1], m[2]
	}
	rest = pathRe.ReplaceAllStringFunc(rest, func(s string) string { return pathColor.Sprint(s) })
	rest = problemRe.ReplaceAllStringFunc(rest, func(s string) string { return problemColor.Sprint(s) })
	if stamp == "" {
		return rest
	}
	return stampColor.Sprint(stamp) + rest
}

// ColorizeLines applies ColorizeLine to each line.
func ColorizeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = ColorizeLine(line)
	}
	return out
}
