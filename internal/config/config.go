package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "RIBSCAN"

// Config holds runtime options. The three user settings live in the
// settings file, not here.
type Config struct {
	SettingsFile string
	LogLevel     string
	LogJSON      bool
	LogFile      bool
}

// Load reads runtime options from RIBSCAN_* environment variables, after
// loading a .env file from the working directory if one exists.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("settings_file", "ribscan.ini")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("log_file", false)

	cfg := Config{
		SettingsFile: v.GetString("settings_file"),
		LogLevel:     v.GetString("log_level"),
		LogJSON:      v.GetBool("log_json"),
		LogFile:      v.GetBool("log_file"),
	}

	if cfg.SettingsFile == "" {
		cfg.SettingsFile = "ribscan.ini"
	}
	return cfg
}
