// Package applog centralizes zerolog setup for every long-lived
// collaborator that sits around the silent handshake core: the CLI builds
// the loggers it hands to the resolver and the endpoint cache. Neither the
// handshake core (internal/handshake) nor the post-handshake transport
// (internal/transport) logs.
package applog

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a logger writing to w (or os.Stderr if nil) at level, with
// component set as a static field so every line it emits can be filtered
// by subsystem.
func New(w io.Writer, level, component string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// ParseLevel maps a config string ("trace".."panic") to a zerolog.Level,
// defaulting to Info on anything unrecognized rather than failing startup
// over a typo'd log_level field.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
