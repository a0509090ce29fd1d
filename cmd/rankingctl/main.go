// Command rankingctl runs the ranking service and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/CSA-DanielVillamizar/lama-mototurismo/config"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/db/bundb"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "rankingctl",
		Usage:     "points and ranking engine",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Commands: []*cli.Command{
			newServeCommand(),
			newMigrateCommand(),
			newRebuildCommand(),
			newSettingsCommand(),
			newPointsCommand(),
			newTokenCommand(),
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func openDB(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres dsn is not configured")
	}
	return bundb.Open(ctx, cfg.Postgres.DSN)
}

func cliLogger(c *cli.Context) *slog.Logger {
	return slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
