package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog logger so that callers don't import zerolog
// directly.
type Logger struct {
	zerolog.Logger
}

// NewConsole returns a console-writer logger. When debug is false the level
// is clamped to info.
func NewConsole(debug bool) *Logger {
	level := zerolog.InfoLevel

	if debug {
		level = zerolog.DebugLevel
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{zl}
}

// NewErrorConsole writes to stderr; used before the main logger is
// constructed, mostly for startup failures.
func NewErrorConsole(debug bool) *Logger {
	level := zerolog.InfoLevel

	if debug {
		level = zerolog.DebugLevel
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{zl}
}
