package main

import (
	"context"
	"errors"
	"os"

	"github.com/bookywarm/wyrm/internal/repositories"
	"github.com/bookywarm/wyrm/internal/services"
	"github.com/bookywarm/wyrm/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	opts := RunnerOpts{
		Config:     config,
		ConfigPath: "config.toml",
		Logger:     logger,
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		logger.Fatalf("failed to open session database: %v", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		logger.Fatalf("failed to run migrations: %v", err)
	}
	opts.DB = db
	opts.Tokens = repositories.NewSessionRepository(db)

	opts.API = services.NewAPIService(config.Server.BaseURL, nil, opts.Tokens)
	opts.Backend = services.NewBackendService(opts.API)

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "wyrm",
		Usage:    "Track your reading from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
