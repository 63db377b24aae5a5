// Package config loads the orchestrator's and worker's environment-derived
// settings into a plain Config struct, using an explicit Load() function
// rather than a flag/viper framework -- this system has no CLI surface to
// parse flags for.
package config

import (
	"log/slog"
	"os"
)

// Poll intervals are fixed constants, not environment-tunable: their exact
// durations are part of the system's observable behavior.
const (
	WorkflowPollInterval   = 10 // milliseconds
	ActivityPollInterval   = 1000
	CompletionPollInterval = 1
)

// Config is the orchestrator server's and worker's environment-derived
// settings.
type Config struct {
	// Addr is the address the orchestrator's HTTP server binds to.
	Addr string
	// LogLevel is parsed into a slog.Level by ParseLogLevel.
	LogLevel string
}

// Load reads Config from the environment, applying defaults for anything
// unset.
func Load() Config {
	cfg := Config{
		Addr:     "localhost:8080",
		LogLevel: "info",
	}
	if v := os.Getenv("ORCHESTRATOR_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("ORCHESTRATOR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

// ParseLogLevel maps the Config's LogLevel string onto a slog.Level,
// defaulting to Info for anything unrecognized.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
