package bundb

import (
	"context"
	"fmt"
	"log/slog"

	attendancemigrations "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/attendance/infrastructure/repositories/migrations"
	rankingmigrations "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/repositories/migrations"
	settingsmigrations "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/settings/infrastructure/repositories/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Module pairs a module name with its migration history.
type Module struct {
	Name       string
	Migrations *migrate.Migrations
}

// Modules lists every module's migrations in the order they run.
var Modules = []Module{
	{Name: "settings", Migrations: settingsmigrations.Migrations},
	{Name: "attendance", Migrations: attendancemigrations.Migrations},
	{Name: "ranking", Migrations: rankingmigrations.Migrations},
}

// Migrators returns one migrator per module, keyed by module name. Each
// module records its history in its own bun_migrations_<name> table.
func Migrators(db *bun.DB) map[string]*migrate.Migrator {
	out := make(map[string]*migrate.Migrator, len(Modules))
	for _, m := range Modules {
		out[m.Name] = newMigrator(db, m)
	}
	return out
}

func newMigrator(db *bun.DB, m Module) *migrate.Migrator {
	return migrate.NewMigrator(db, m.Migrations,
		migrate.WithTableName("bun_migrations_"+m.Name),
		migrate.WithLocksTableName("bun_migration_locks_"+m.Name),
	)
}

// MigrateAll initializes and applies every module migration, then the River
// schema when dsn is not empty.
func MigrateAll(ctx context.Context, db *bun.DB, dsn string, logger *slog.Logger) error {
	for _, m := range Modules {
		migrator := newMigrator(db, m)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize %s migrations: %w", m.Name, err)
		}
		group, err := migrator.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", m.Name, err)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations", slog.String("module", m.Name))
		} else {
			logger.InfoContext(ctx, "Migrated module", slog.String("module", m.Name), slog.String("group", group.String()))
		}
	}

	if dsn == "" {
		return nil
	}
	return MigrateRiver(ctx, dsn, logger)
}

// MigrateRiver applies the River job queue schema.
func MigrateRiver(ctx context.Context, dsn string, logger *slog.Logger) error {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse DSN for River migrations: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}

	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
	if err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}

	logger.InfoContext(ctx, "River queue migrations completed", slog.Int("versions", len(res.Versions)))
	return nil
}
