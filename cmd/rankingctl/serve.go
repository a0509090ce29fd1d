package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/CSA-DanielVillamizar/lama-mototurismo/app"
	"github.com/urfave/cli/v2"
)

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "consume attendance events, serve the HTTP API and run scheduled rebuilds",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.NewApp(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			runErr := application.Run(ctx)
			if err := application.Close(); err != nil && runErr == nil {
				return err
			}
			return runErr
		},
	}
}
