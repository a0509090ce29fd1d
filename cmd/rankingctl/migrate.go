package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/CSA-DanielVillamizar/lama-mototurismo/db/bundb"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func newMigrateCommand() *cli.Command {
	withMigrators := func(fn func(c *cli.Context, migrators map[string]*migrate.Migrator, names []string) error) cli.ActionFunc {
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

			migrators := bundb.Migrators(db)
			names := make([]string, 0, len(bundb.Modules))
			for _, m := range bundb.Modules {
				names = append(names, m.Name)
			}
			return fn(c, migrators, names)
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: withMigrators(func(c *cli.Context, migrators map[string]*migrate.Migrator, names []string) error {
					for _, name := range names {
						fmt.Fprintf(c.App.Writer, "Initializing migrations for module: %s\n", name)
						if err := migrators[name].Init(c.Context); err != nil {
							return fmt.Errorf("failed to initialize %s: %w", name, err)
						}
					}
					return nil
				}),
			},
			{
				Name:  "up",
				Usage: "apply module migrations and the River schema",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					db, err := openDB(c.Context, cfg)
					if err != nil {
						return err
					}
					defer db.Close()
					return bundb.MigrateAll(c.Context, db, cfg.Postgres.DSN, cliLogger(c))
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group of every module",
				Action: withMigrators(func(c *cli.Context, migrators map[string]*migrate.Migrator, names []string) error {
					// Reverse order so dependents roll back first.
					for i := len(names) - 1; i >= 0; i-- {
						name := names[i]
						group, err := migrators[name].Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Fprintf(c.App.Writer, "No groups to roll back for module: %s\n", name)
						} else {
							fmt.Fprintf(c.App.Writer, "Rolled back module: %s to %s\n", name, group)
						}
					}
					return nil
				}),
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: withMigrators(func(c *cli.Context, migrators map[string]*migrate.Migrator, names []string) error {
					moduleName := c.Args().First()
					migrator, ok := migrators[moduleName]
					if !ok {
						sort.Strings(names)
						return fmt.Errorf("invalid module name %q, want one of %s", moduleName, strings.Join(names, ", "))
					}

					name := strings.Join(c.Args().Tail(), "_")
					mf, err := migrator.CreateGoMigration(c.Context, name)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Created migration for module %s: %s (%s)\n", moduleName, mf.Name, mf.Path)
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: withMigrators(func(c *cli.Context, migrators map[string]*migrate.Migrator, names []string) error {
					for _, name := range names {
						ms, err := migrators[name].MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "Migrations for module: %s\n", name)
						fmt.Fprintf(c.App.Writer, "  Applied: %s\n", ms.Applied())
						fmt.Fprintf(c.App.Writer, "  Unapplied: %s\n", ms.Unapplied())
					}
					return nil
				}),
			},
		},
	}
}
