package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/clock"
	"github.com/aristath/kanbanbar/internal/config"
)

// Wire initializes all dependencies against the real clock.
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	return WireWithClock(cfg, clock.New(), log)
}

// WireWithClock initializes all dependencies and returns a fully configured container.
// Jobs are registered but not started.
func WireWithClock(cfg *config.Config, clk clock.Clock, log zerolog.Logger) (*Container, error) {
	// Step 1: Initialize databases
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize databases: %w", err)
	}
	container.Clock = clk

	// Step 2: Initialize repositories
	InitializeRepositories(container)

	// Step 3: Initialize services
	if err := InitializeServices(container, cfg, log); err != nil {
		container.StateDB.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Step 4: Register jobs and triggers
	if err := InitializeWork(container, log); err != nil {
		container.StateDB.Close()
		return nil, fmt.Errorf("failed to initialize work: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed")
	return container, nil
}

// Start launches every ready poll job and the maintenance scheduler.
func (c *Container) Start() {
	c.Scheduler.StartAll()
	c.Maintenance.Start()
}

// Shutdown stops the jobs, drops pending config triggers and closes the database.
func (c *Container) Shutdown(ctx context.Context) error {
	c.Debouncer.Cancel()
	c.Maintenance.Stop()
	stopErr := c.Scheduler.StopAll(ctx)
	return errors.Join(stopErr, c.StateDB.Close())
}
