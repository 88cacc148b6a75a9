package logger

import (
	"log/slog"
	"os"
)

// Init configures the process-wide slog logger for the given environment.
// Development gets a verbose text handler with source locations, everything
// else gets JSON for log aggregation.
func Init(environment string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	var handler slog.Handler
	if environment == "development" {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With("service", "tradepost")
	slog.SetDefault(logger)

	return logger
}
