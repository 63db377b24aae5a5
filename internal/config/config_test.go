package config_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jayy-lmao/flimsy-execution-engine/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load()
	require.Equal(t, "localhost:8080", cfg.Addr)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadHonorsEnv(t *testing.T) {
	t.Setenv("ORCHESTRATOR_ADDR", "0.0.0.0:9090")
	t.Setenv("ORCHESTRATOR_LOG_LEVEL", "debug")

	cfg := config.Load()
	require.Equal(t, "0.0.0.0:9090", cfg.Addr)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, config.ParseLogLevel("debug"))
	require.Equal(t, slog.LevelWarn, config.ParseLogLevel("warn"))
	require.Equal(t, slog.LevelError, config.ParseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, config.ParseLogLevel("unknown"))
}
