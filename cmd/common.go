package cmd

import (
	"hymods/client"
	"hymods/config"
	"hymods/logger"
	"hymods/service"
	"hymods/store"

	"go.uber.org/zap"
)

// bootstrap handles shared initialization for the browser-facing commands:
// it loads the configuration and builds the content source matching the
// configured deployment mode.
func bootstrap(path string) (config.Config, *service.Service) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}

	source, err := buildSource(cfg)
	if err != nil {
		logger.Log.Fatalw("Failed to initialize content source", zap.Error(err))
	}

	return cfg, service.New(source, logger.Log)
}

// buildSource picks the content source for the configured mode: flat JSON
// files for a local install, the HTTP API for a server install.
func buildSource(cfg config.Config) (service.Source, error) {
	switch cfg.Mode {
	case config.ModeServer:
		apiClient, err := client.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		logger.Log.Infow("Using server content source", zap.String("url", cfg.ServerURL))
		return apiClient, nil
	default:
		dir, err := store.ResolveDataDir(cfg.DataDir, cfg.DataSearchPaths())
		if err != nil {
			return nil, err
		}
		fileStore, err := store.NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		logger.Log.Infow("Using local content source", zap.String("dir", dir))
		return fileStore, nil
	}
}

// openSQLiteStore initializes the relational store for the server-side
// commands (serve, import).
func openSQLiteStore(cfg config.Config) *store.SQLiteStore {
	st, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Log.Fatalw("Failed to open database", zap.String("path", cfg.DatabasePath), zap.Error(err))
	}
	logger.Log.Infow("Database initialized", zap.String("path", cfg.DatabasePath))
	return st
}
