package main

import (
	"context"
	"os"

	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warnf("failed to load config.toml, using defaults: %v", err)
		}
	}

	var api services.Extractor
	if config.Credentials.Spotify.HasCredentials() {
		if svc, err := services.NewSpotifyService(
			context.Background(),
			config.Credentials.Spotify.ClientID,
			config.Credentials.Spotify.ClientSecret,
			logger,
		); err == nil {
			api = svc
		} else {
			logger.Warnf("failed to initialize Spotify API client: %v", err)
		}
	} else {
		logger.Warn("Spotify API credentials not configured, only the web scraping fallback is available")
	}

	scraper := services.NewScraperService(config.Scraper, logger)

	runner := NewRunner(RunnerOpts{
		Config:  config,
		API:     api,
		Scraper: scraper,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "spx",
		Usage:    "Extract Spotify playlist data to CSV and Excel",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
