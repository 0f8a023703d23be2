package main

import (
	"context"
	"os"

	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/services"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	opts := RunnerOpts{
		Config:    config,
		Watchlist: services.NewLetterboxdClient(config.Letterboxd, nil, logger),
		Logger:    logger,
	}

	if config.Emby.BaseURL != "" && config.Emby.APIKey != "" {
		emby := services.NewEmbyClient(config.Emby.BaseURL, config.Emby.APIKey, nil)
		opts.Media = emby
		opts.Accounts = emby
	}

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "lbsync",
		Usage:    "Sync Letterboxd watchlists into Emby playlists",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
