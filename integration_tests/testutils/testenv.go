package testutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/CSA-DanielVillamizar/lama-mototurismo/db/bundb"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/integration_tests/containers"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
)

// TestEnvironment holds a migrated Postgres for integration testing.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	DB            *bun.DB
	DSN           string
	Logger        *slog.Logger
}

// NewTestEnvironment starts Postgres and applies every migration. The test is
// skipped under -short or when no container runtime is reachable.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		t.Fatalf("failed to setup postgres container: %v", err)
	}
	env.PgContainer = pgContainer
	env.DSN = dsn

	db, err := bundb.Open(ctx, dsn)
	if err != nil {
		env.Cleanup()
		t.Fatalf("failed to open database: %v", err)
	}
	env.DB = db

	if err := bundb.MigrateAll(ctx, db, dsn, env.Logger); err != nil {
		env.Cleanup()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(env.Cleanup)
	return env
}

// Cleanup closes the database and terminates the container.
func (env *TestEnvironment) Cleanup() {
	if env.DB != nil {
		_ = env.DB.Close()
		env.DB = nil
	}
	if env.PgContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = env.PgContainer.Terminate(ctx)
		env.PgContainer = nil
	}
	if env.CancelContext != nil {
		env.CancelContext()
	}
}

// TruncateTables truncates the specified tables
func TruncateTables(ctx context.Context, db bun.IDB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = fmt.Sprintf(`"%s"`, table)
	}
	query := "TRUNCATE TABLE " + strings.Join(quoted, ", ") + " CASCADE"
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables %v: %w", tables, err)
	}
	return nil
}

// CleanRankingTables empties the ledger and snapshot tables.
func CleanRankingTables(ctx context.Context, db bun.IDB) error {
	return TruncateTables(ctx, db, "ranking_snapshots", "ranking_applied_attendances", "attendance_records", "events", "members", "app_settings")
}
