package txm

import (
	"os"

	"github.com/rs/zerolog"
)

// newDefaultLogger returns a disabled logger: the hot path never pays for
// logging unless a caller opts in via Options.Logger. Cold-path events
// (clock overflow at Warn, each spin of a privatization-quiescence wait at
// Debug) are the only things ever logged by this package.
func newDefaultLogger() zerolog.Logger {
	return zerolog.Nop()
}

// NewConsoleLogger is a convenience constructor for callers that want
// human-readable diagnostics during development, matching the console
// writer style used across the retrieved pack's zerolog consumers.
func NewConsoleLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Str("component", "txm").Logger()
}
