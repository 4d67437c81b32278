package logger

import (
	"log/slog"
	"os"
)

// Logger is the application logger. Crypto layers log failures through
// it with record identifiers only; plaintext and key material must never
// reach a log line.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing text lines to stdout at the given level.
func New(level int) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(level)})),
	}
}

// Component returns a child logger tagged with a component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{Logger: l.Logger.With("component", name)}
}

// Fatal is equivalent to Error followed by os.Exit(1).
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
