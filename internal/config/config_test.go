package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 75, cfg.Discovery.OriginalConfidence)
	assert.Equal(t, 40, cfg.Discovery.DiscoveredConfidence)
	assert.Equal(t, 70, cfg.Discovery.RecurseConfidence)
	assert.Equal(t, 3, cfg.Discovery.MaxDepth)
	assert.Contains(t, cfg.Discovery.CommonPaths, "/menu")
	assert.Equal(t, 60, cfg.SubMenu.Confidence)
	assert.InDelta(t, 0.85, cfg.SubMenu.DedupeSimilarity, 0.001)
	assert.Equal(t, 150, cfg.Extract.MaxItems)
	assert.Equal(t, int64(10*1024*1024), cfg.PDF.MaxBytes)
	assert.Equal(t, "local", cfg.OCR.Provider)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MENUSCAN_DISCOVERY_MAX_DEPTH", "5")
	t.Setenv("MENUSCAN_LOG_LEVEL", "debug")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Discovery.MaxDepth)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_Console(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
}
