// Package runlog provides the diagnostic log shared by playctl commands.
// Entries go to a size-rotated file when one is configured and are dropped
// otherwise; user-facing output never goes through here.
package runlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a file-backed diagnostic logger.
type Logger struct {
	logger *log.Logger
	file   *lumberjack.Logger
}

// New returns a Logger writing to path, creating parent directories as
// needed. An empty path yields a Logger that discards everything.
func New(path string) (*Logger, error) {
	if path == "" {
		return Discard(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	return &Logger{
		logger: log.New(file, "playctl ", log.LstdFlags),
		file:   file,
	}, nil
}

// Discard returns a Logger that writes nowhere.
func Discard() *Logger {
	return &Logger{logger: log.New(io.Discard, "", 0)}
}

// Printf logs a formatted line.
func (l *Logger) Printf(format string, v ...any) {
	if l == nil {
		return
	}
	l.logger.Printf(format, v...)
}

// Error logs err with a short context prefix.
func (l *Logger) Error(context string, err error) {
	l.Printf("error: %s: %v", context, err)
}

// Close flushes and closes the underlying file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
