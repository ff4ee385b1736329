// Package main is the entry point for kanbanbar, a polling status bar for
// market quotes, GitLab merge requests and Zentao tasks.
//
// Every subcommand wires the same DI container; they differ only in how the
// rendered bar is shown:
//   - serve: HTTP/WebSocket API
//   - tui: terminal status bar
//   - fetch: one cycle per job, printed to stdout
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/kanbanbar/internal/config"
	"github.com/aristath/kanbanbar/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "kanbanbar",
	Short:         "Polling status bar for quotes, merge requests and tasks",
	Long:          "kanbanbar polls market quotes, GitLab merge requests and Zentao tasks on independent schedules and renders a compact status bar.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	settingsPath string
	logLevel     string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&settingsPath, "settings", "s", "", "Path to settings YAML (default <data>/settings.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the persistent flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if settingsPath != "" {
		cfg.SettingsPath = settingsPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)
	return log
}
