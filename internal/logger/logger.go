// Package logger provides a small leveled logger over the standard log
// package, plus an antidup.Observer that writes cache events to it.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/probablyarth/antidup-go"
)

// Environment variable to configure the log file path.
const envLogPath = "ANTIDUP_LOG"

// Logger writes level-prefixed lines. A nil *Logger discards everything.
type Logger struct {
	std  *log.Logger
	file *os.File
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{std: log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds)}
}

// FromEnv opens the file named by ANTIDUP_LOG in append mode, or logs to
// stderr when the variable is unset.
func FromEnv() (*Logger, error) {
	path := os.Getenv(envLogPath)
	if path == "" {
		return New(os.Stderr), nil
	}
	return Open(path)
}

// Open creates parent directories if needed and appends to the file at path.
func Open(path string) (*Logger, error) {
	if err := ensureParentDir(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	l := New(f)
	l.file = f
	return l, nil
}

// Close closes the underlying log file, if one was opened.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Infof logs informational messages.
func (l *Logger) Infof(format string, args ...any) { l.write("INFO", format, args...) }

// Warnf logs warnings.
func (l *Logger) Warnf(format string, args ...any) { l.write("WARN", format, args...) }

// Errorf logs errors.
func (l *Logger) Errorf(format string, args ...any) { l.write("ERROR", format, args...) }

func (l *Logger) write(level string, format string, args ...any) {
	if l == nil || l.std == nil {
		return
	}
	l.std.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

// Observer returns an antidup.Observer that logs every event under name.
// Errors are logged at WARN, everything else at INFO.
func (l *Logger) Observer(name string) antidup.Observer {
	return &observer{log: l, name: name}
}

type observer struct {
	log  *Logger
	name string
}

func (o *observer) On(e antidup.EventData) {
	if e.Event == antidup.EventError {
		o.log.Warnf("cache=%s event=%s key=%v", o.name, e.Event, e.Key)
		return
	}
	o.log.Infof("cache=%s event=%s key=%v", o.name, e.Event, e.Key)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
