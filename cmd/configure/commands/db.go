package commands

import (
	"fmt"

	"github.com/benvon/life-rpg/internal/config"
	"github.com/benvon/life-rpg/internal/database"
)

func openDB() (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}
