package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Deployment modes. Local mode reads flat JSON files and never counts
// downloads; server mode talks to a hymods server over HTTP.
const (
	ModeLocal  = "local"
	ModeServer = "server"
)

// Config holds all configuration for the application.
// Values are loaded by Viper from a .env file and/or environment variables.
type Config struct {
	Mode           string `mapstructure:"HYMODS_MODE"`
	ServerURL      string `mapstructure:"SERVER_URL"`
	DataDir        string `mapstructure:"DATA_DIR"` // explicit data directory, overrides the search path
	Port           int    `mapstructure:"PORT"`
	HTTPTimeout    int    `mapstructure:"HTTP_TIMEOUT"` // seconds
	CountDownloads bool   `mapstructure:"COUNT_DOWNLOADS"`
	DatabasePath   string `mapstructure:"-"` // Not from env, derived
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		slog.Info("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	viper.AutomaticEnv()

	for key, env := range map[string]string{
		"hymods_mode":     "HYMODS_MODE",
		"server_url":      "SERVER_URL",
		"data_dir":        "DATA_DIR",
		"port":            "PORT",
		"http_timeout":    "HTTP_TIMEOUT",
		"count_downloads": "COUNT_DOWNLOADS",
	} {
		if bindErr := viper.BindEnv(key, env); bindErr != nil {
			slog.Warn("Unable to bind env var", "var", env, "error", bindErr)
		}
	}

	if vipErr = viper.Unmarshal(&config); vipErr != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", vipErr)
	}

	processConfigDefaults(&config)

	if config.Mode != ModeLocal && config.Mode != ModeServer {
		return Config{}, fmt.Errorf("HYMODS_MODE must be %q or %q, got %q", ModeLocal, ModeServer, config.Mode)
	}

	// COUNT_DOWNLOADS defaults per deployment mode: a local install has no
	// shared store to update, so downloads are open-only unless overridden.
	// Viper doesn't distinguish "unset" from "false" for bools, so check the
	// raw string value.
	countStr := viper.GetString("COUNT_DOWNLOADS")
	if countStr == "" {
		config.CountDownloads = config.Mode == ModeServer
	} else {
		count, parseErr := strconv.ParseBool(countStr)
		if parseErr != nil {
			slog.Warn("Invalid value for COUNT_DOWNLOADS ('"+countStr+"'), using mode default. Error:", "error", parseErr)
			config.CountDownloads = config.Mode == ModeServer
		} else {
			config.CountDownloads = count
		}
	}

	// Derive DatabasePath (lives alongside the JSON data for portability).
	config.DatabasePath = filepath.Join(dataDirOrDefault(config), "hymods.db")

	return config, nil
}

// processConfigDefaults fills in defaults for values that were not provided.
func processConfigDefaults(cfg *Config) {
	if cfg.Mode == "" {
		cfg.Mode = ModeLocal
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:3000"
	}
	if cfg.Port == 0 {
		cfg.Port = 3000
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 5
	}
}

// DataSearchPaths returns the ordered candidate directories for the flat-file
// store. An explicit DATA_DIR wins and is the only candidate; otherwise the
// fixed list is tried in order and the first existing directory is used.
func (c Config) DataSearchPaths() []string {
	if c.DataDir != "" {
		return []string{c.DataDir}
	}
	paths := []string{"data", filepath.Join("src", "data")}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".local", "share", "hymods"))
	}
	return paths
}

func dataDirOrDefault(cfg Config) string {
	if cfg.DataDir != "" {
		return cfg.DataDir
	}
	return "data"
}
