// Package logging configures the process-wide slog logger. The TUI must
// never write logs to the terminal, so the default is to discard them.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Level represents a logging level.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

func init() {
	Discard()
}

// ParseLevel parses a level string to Level. Unknown values map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Configure sends JSON logs at level to w. A nil w means stderr.
func Configure(level Level, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	closeFile()

	if w == nil {
		w = os.Stderr
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level.slogLevel(),
	})))
}

// EnableFileLogging appends JSON logs at level to path, creating parent
// directories as needed. Call before the TUI starts.
func EnableFileLogging(path string, level Level) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	closeFile()
	logFile = f
	slog.SetDefault(slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: level.slogLevel(),
	})))
	return nil
}

// Discard drops all log output.
func Discard() {
	mu.Lock()
	defer mu.Unlock()
	closeFile()

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
}

// Close closes the log file if open and stops logging.
func Close() {
	Discard()
}

func closeFile() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
