package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/wahoodash/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnvFiles(".env.local", ".env"); err != nil {
		logger.Warn("failed to load env file", "error", err)
	}

	configPath := os.Getenv("WAHOODASH_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
			configPath = ""
		}
	} else {
		configPath = ""
	}
	config.ApplyEnv(os.LookupEnv)

	if err := shared.SetLogLevel(logger, config.Log.Level); err != nil {
		logger.Warn("invalid log level", "level", config.Log.Level)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "wahoodash",
		Usage:    "Connect to Wahoo and export fitness data",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrCanceled) {
			logger.Warn("canceled")
			os.Exit(130)
		}
		logger.Fatalf("application error: %v", err)
	}
}
