// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process configuration read from the environment
type Config struct {
	DataDir      string // Base directory for the state database and log file (always absolute)
	SettingsPath string // YAML bar settings, defaults to <DataDir>/settings.yaml
	LogLevel     string
	LogPretty    bool
	Port         int
	DevMode      bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("KANBANBAR_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	settingsPath := getEnv("KANBANBAR_SETTINGS", filepath.Join(dataDir, "settings.yaml"))

	cfg := &Config{
		DataDir:      dataDir,
		SettingsPath: settingsPath,
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogPretty:    getEnvAsBool("LOG_PRETTY", true),
		Port:         getEnvAsInt("PORT", 8017),
		DevMode:      getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DatabasePath is the SQLite file holding persisted state.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "state.db")
}

// LogPath is where the terminal front end sends its logs.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "kanbanbar.log")
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
