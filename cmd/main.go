package main

import (
	"context"
	"errors"
	"os"

	"github.com/HienH/smas-vibing/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		ConfigPath: "config.toml",
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "smas",
		Usage:    "Share a Spotify playlist that friends fill with their top tracks",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		var cooldown *shared.CooldownError
		switch {
		case errors.As(err, &cooldown):
			os.Exit(2)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
