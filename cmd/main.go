package main

import (
	"context"
	"errors"
	"os"

	"github.com/aizithy/audio-extractor-cloud/internal/services"
	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

const version = "1.0.0"

func main() {
	godotenv.Load()

	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("could not load config.toml, using defaults", "err", err)
		}
	}
	config.ApplyEnv()

	client := services.NewClient(config.API.BaseURL, nil)

	runner := NewRunner(RunnerOpts{
		Config: config,
		Client: client,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "audio-extractor",
		Usage:    "Extract audio and video from YouTube, Bilibili and other platforms",
		Version:  version,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
