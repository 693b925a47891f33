package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileLogger appends prefixed lines to a log file.
type FileLogger struct {
	*StandardLogger
	mu   sync.Mutex
	file *os.File
}

// NewFileLogger opens (or creates) path for appending.
func NewFileLogger(path string) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &FileLogger{
		StandardLogger: NewStandardLogger(log.New(f, "", log.LstdFlags)),
		file:           f,
	}, nil
}

// Close closes the underlying file once.
func (f *FileLogger) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// ToStdLogger adapts a Logger into a *log.Logger for libraries that want one.
// Lines are forwarded at Info level, except lines mentioning "error" which go to Error.
func ToStdLogger(l Logger) *log.Logger {
	return log.New(stdWriter{l: l}, "", 0)
}

type stdWriter struct {
	l Logger
}

func (w stdWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	if strings.Contains(strings.ToLower(msg), "error") {
		w.l.Error("%s", msg)
	} else {
		w.l.Info("%s", msg)
	}
	return len(p), nil
}

var _ Logger = (*FileLogger)(nil)
