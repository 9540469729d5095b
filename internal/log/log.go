// Package log provides the logging infrastructure shared by all InvestPal
// components.
//
// Loggers are injected, never global: each component receives a log.Logger
// via its constructor and may add context with logger.With(). The package
// wraps log/slog directly so the full slog ecosystem stays available.
//
// Usage:
//
//	logger := log.New(log.Config{Level: slog.LevelDebug, JSON: true})
//	store := store.New(pool, logger.With("component", "store"))
//
//	// In tests:
//	logger := log.NewNop()
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a type alias for *slog.Logger. Components accept log.Logger as a
// dependency; the alias keeps them compatible with everything that consumes
// *slog.Logger.
type Logger = *slog.Logger

// Config defines logger configuration options.
type Config struct {
	// Level sets the minimum log level. Default: slog.LevelInfo
	Level slog.Level

	// JSON enables JSON format output. Default: false (text format)
	JSON bool

	// AddSource adds source file information to log entries. Default: false
	AddSource bool
}

// New creates a logger writing to os.Stderr with the given configuration.
// Stderr keeps stdout free for the MCP stdio transport, which reserves it
// for JSON-RPC frames.
func New(cfg Config) Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter creates a logger that writes to w. Useful for capturing
// output in tests.
func NewWithWriter(w io.Writer, cfg Config) Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// NewNop creates a logger that discards all output. Test-only: production
// code should always use New or NewWithWriter.
func NewNop() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
