package log

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Logger provides centralized logging for the route generator and its tools
type Logger struct {
	logger *slog.Logger
	file   *os.File
}

var (
	mu           sync.RWMutex
	globalLogger *Logger
	level        = new(slog.LevelVar)
)

// init creates the global logger with stderr output by default
func init() {
	level.Set(slog.LevelInfo)
	globalLogger = &Logger{
		logger: slog.New(newHandler(os.Stderr)),
	}
}

func newHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   slog.TimeKey,
					Value: slog.StringValue(a.Value.Time().Format("2006/01/02 15:04:05.000000")),
				}
			}
			return a
		},
	})
}

// SetFileOutput configures the logger to write to the specified file
func SetFileOutput(filename string) error {
	logger, err := NewLogger(filename)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if globalLogger != nil && globalLogger.file != nil {
		globalLogger.file.Close()
	}
	globalLogger = logger
	return nil
}

// SetOutput redirects logging to w. Tests use it to capture diagnostics.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger != nil && globalLogger.file != nil {
		globalLogger.file.Close()
	}
	globalLogger = &Logger{logger: slog.New(newHandler(w))}
}

// SetLevel changes the minimum level written by every logger
func SetLevel(l slog.Level) {
	level.Set(l)
}

// NewLogger creates a new logger that appends to the specified file
func NewLogger(filename string) (*Logger, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}

	return &Logger{
		logger: slog.New(newHandler(file)),
		file:   file,
	}, nil
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Standard logging methods
func Debug(msg string, args ...any) {
	if l := current(); l != nil {
		l.logger.Debug(msg, args...)
	}
}

func Info(msg string, args ...any) {
	if l := current(); l != nil {
		l.logger.Info(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if l := current(); l != nil {
		l.logger.Warn(msg, args...)
	}
}

func Error(msg string, args ...any) {
	if l := current(); l != nil {
		l.logger.Error(msg, args...)
	}
}

// Close closes the log file, if any, and falls back to stderr
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger != nil && globalLogger.file != nil {
		globalLogger.file.Close()
		globalLogger = &Logger{logger: slog.New(newHandler(os.Stderr))}
	}
}
