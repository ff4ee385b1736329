package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristath/kanbanbar/internal/di"
	"github.com/aristath/kanbanbar/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the poll jobs behind the HTTP API",
	Long:  "Runs every configured poll job and serves the bar over HTTP and WebSocket. SIGHUP reloads the settings file.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (default from PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	log := newLogger(cfg)

	log.Info().Str("data_dir", cfg.DataDir).Str("settings", cfg.SettingsPath).Msg("Starting kanbanbar")

	container, err := di.Wire(cfg, log)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Log:       log,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		DB:        container.StateDB,
		Settings:  container.Settings,
		Scheduler: container.Scheduler,
		Display:   container.Display,
		Market:    container.QuoteService,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	container.Start()
	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)

	var runErr error
loop:
	for {
		select {
		case sig := <-signals:
			if sig == syscall.SIGHUP {
				// Errors keep the previous settings and are logged by the store
				if changed, err := container.Settings.Reload(); err == nil {
					log.Info().Strs("sections", changed).Msg("Settings reloaded")
				}
				continue
			}
			log.Info().Str("signal", sig.String()).Msg("Shutting down")
			break loop
		case runErr = <-serverErr:
			log.Error().Err(runErr).Msg("HTTP server failed")
			break loop
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := container.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Jobs did not stop cleanly")
	}

	log.Info().Msg("Server stopped")
	return runErr
}
