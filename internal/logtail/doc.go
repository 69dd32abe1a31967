// Package logtail reads the end of fediscope's log file and colors it for
// the logs command.
//
// Read keeps a ring buffer of the last N lines, so memory stays bounded by N
// however large the file has grown between rotations. Only the current file
// is read; rotated backups are ignored. A missing file is not an error: it
// just means nothing has been logged yet.
//
// ColorizeLine understands the standard logger's "2006/01/02 15:04:05" prefix
// and uses fatih/color, which turns itself off when stdout is not a
// terminal.
package logtail
