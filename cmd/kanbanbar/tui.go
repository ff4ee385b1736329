package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aristath/kanbanbar/internal/di"
	"github.com/aristath/kanbanbar/internal/ui"
	"github.com/aristath/kanbanbar/pkg/logger"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the poll jobs as a terminal status bar",
	Long:  "Runs every configured poll job in-process and renders the bar in the terminal. Logs go to the log file in the data directory.",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
		Output: logFile,
	})
	logger.SetGlobalLogger(log)

	container, err := di.Wire(cfg, log)
	if err != nil {
		return err
	}

	model := ui.NewModel(container.Display, func() {
		for _, name := range container.Registry.Names() {
			// Unconfigured jobs refuse to start; the scheduler logs why
			_ = container.Scheduler.Restart(name)
		}
	})
	defer model.Close()

	container.Start()

	_, runErr := tea.NewProgram(model, tea.WithAltScreen()).Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := container.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Jobs did not stop cleanly")
	}
	return runErr
}
