package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/tuner/internal/catalog"
	"github.com/jfmyers9/tuner/internal/config"
	"github.com/jfmyers9/tuner/internal/logging"
	"github.com/jfmyers9/tuner/internal/session"
)

// setup loads configuration and creates the logger shared by all commands
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logging.New(logFile, logLevel), nil
}

// openSession loads configuration and logs in
func openSession(ctx context.Context) (*config.Config, *session.Session, zerolog.Logger, error) {
	cfg, logger, err := setup()
	if err != nil {
		return nil, nil, logger, err
	}
	s, err := session.Open(ctx, cfg, logger, session.Options{})
	if err != nil {
		return nil, nil, logger, err
	}
	return cfg, s, logger, nil
}

// openStore opens the catalog database in the data directory
func openStore(cfg *config.Config) (*catalog.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := catalog.Open(filepath.Join(cfg.DataDir, "catalog.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return store, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
