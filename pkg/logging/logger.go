// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging configures structured logging for the analyzer
// binaries.
//
// The service logs JSON to stdout so log collectors can ingest it; the
// CLI logs human-readable text to stderr, keeping stdout free for
// command output. Both read their level from LOG_LEVEL.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler for one binary.
type Config struct {
	// Service is attached to every record as the "service" attribute.
	Service string

	// Level is one of debug, info, warn, error. Empty or unknown
	// values fall back to info.
	Level string

	// JSON selects the JSON handler; otherwise text.
	JSON bool

	// Output defaults to stdout for JSON and stderr for text.
	Output io.Writer
}

// Setup builds a logger from cfg, installs it as the slog default, and
// returns it.
func Setup(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		if cfg.JSON {
			out = os.Stdout
		} else {
			out = os.Stderr
		}
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name onto a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromEnv reads LOG_LEVEL.
func LevelFromEnv() string {
	return os.Getenv("LOG_LEVEL")
}
