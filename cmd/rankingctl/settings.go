package main

import (
	"fmt"
	"sort"

	settingsservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/settings/application"
	settingsdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/settings/infrastructure/repositories"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/observability"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
)

func newSettingsCommand() *cli.Command {
	withStore := func(fn func(c *cli.Context, store *settingsservice.Store) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := openDB(c.Context, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			store := settingsservice.NewStore(settingsdb.NewRepository(db), cliLogger(c), observability.NewNoop(), otel.Tracer("rankingctl"))
			if err := store.Refresh(c.Context); err != nil {
				return err
			}
			return fn(c, store)
		}
	}

	return &cli.Command{
		Name:  "settings",
		Usage: "inspect and change points tunables",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "print every stored setting",
				Action: withStore(func(c *cli.Context, store *settingsservice.Store) error {
					snapshot := store.Snapshot()
					keys := make([]string, 0, len(snapshot))
					for k := range snapshot {
						keys = append(keys, k)
					}
					sort.Strings(keys)
					for _, k := range keys {
						fmt.Fprintf(c.App.Writer, "%s=%s\n", k, snapshot[k])
					}
					return nil
				}),
			},
			{
				Name:      "set",
				Usage:     "store a setting",
				ArgsUsage: "<key> <value>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Usage: "free-form note stored with the value"},
				},
				Action: withStore(func(c *cli.Context, store *settingsservice.Store) error {
					if c.NArg() != 2 {
						return fmt.Errorf("expected <key> <value>, got %d arguments", c.NArg())
					}
					return store.Set(c.Context, c.Args().Get(0), c.Args().Get(1), c.String("description"))
				}),
			},
			{
				Name:      "unset",
				Usage:     "remove a setting so its default applies",
				ArgsUsage: "<key>",
				Action: withStore(func(c *cli.Context, store *settingsservice.Store) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected <key>, got %d arguments", c.NArg())
					}
					return store.Unset(c.Context, c.Args().First())
				}),
			},
		},
	}
}
