// Package audit provides isolated per-request log files.
//
// Each inbound request gets its own log file so lifecycle milestones and
// failure diagnostics never interleave across concurrent requests. File
// names combine a human-readable timestamp with a uuid so two requests
// arriving within the same second still get distinct files.
package audit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Dir is an audit log directory. It is the only state shared between
// requests; creation is idempotent and safe under concurrent access.
type Dir struct {
	path string
}

// NewDir ensures the audit directory exists and returns it.
// An already existing directory is not an error.
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create audit log directory %s: %w", path, err)
	}
	return &Dir{path: path}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// Open creates a new request-scoped logger backed by a dedicated file.
// The caller must Close the logger when the request finishes.
func (d *Dir) Open() (*Logger, error) {
	name := fmt.Sprintf("%s_%s.log",
		time.Now().Format("2006-01-02_15-04-05"),
		uuid.NewString()[:8],
	)
	path := filepath.Join(d.path, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log %s: %w", path, err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo})
	return &Logger{
		file: f,
		log:  slog.New(handler),
		path: path,
	}, nil
}

// Logger records timestamped lifecycle entries for a single request.
// It is owned by exactly one request and is not shared.
type Logger struct {
	file *os.File
	log  *slog.Logger
	path string
}

// All Logger methods are safe on a nil receiver so callers can degrade to
// a no-op audit channel when the log file could not be opened.

// Path returns the log file path.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Info appends an informational entry.
func (l *Logger) Info(msg string, args ...any) {
	if l == nil {
		return
	}
	l.log.Info(msg, args...)
}

// Error appends an error entry.
func (l *Logger) Error(msg string, args ...any) {
	if l == nil {
		return
	}
	l.log.Error(msg, args...)
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close audit log %s: %w", l.path, err)
	}
	return nil
}
