package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/config"
	"github.com/aristath/kanbanbar/internal/database"
)

// InitializeDatabases opens and migrates the state database
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	stateDB, err := database.New(database.Config{
		Path: cfg.DatabasePath(),
		Name: "state",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	if err := stateDB.Migrate(); err != nil {
		stateDB.Close()
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}

	log.Info().Str("path", stateDB.Path()).Msg("State database ready")

	return &Container{StateDB: stateDB}, nil
}
