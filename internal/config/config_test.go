package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Load()

	assert.Equal(t, "ribscan.ini", cfg.SettingsFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
	assert.False(t, cfg.LogFile)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RIBSCAN_SETTINGS_FILE", "office.ini")
	t.Setenv("RIBSCAN_LOG_LEVEL", "debug")
	t.Setenv("RIBSCAN_LOG_JSON", "true")
	t.Setenv("RIBSCAN_LOG_FILE", "1")

	cfg := Load()

	assert.Equal(t, "office.ini", cfg.SettingsFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogJSON)
	assert.True(t, cfg.LogFile)
}

func TestEmptySettingsFileFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RIBSCAN_SETTINGS_FILE", "")

	assert.Equal(t, "ribscan.ini", Load().SettingsFile)
}
