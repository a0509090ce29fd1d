package rankingmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating ranking_snapshots table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS ranking_snapshots (
					id BIGSERIAL PRIMARY KEY,
					tenant_id UUID NOT NULL,
					year INT NOT NULL,
					scope_type VARCHAR(16) NOT NULL
						CHECK (scope_type IN ('GLOBAL', 'CONTINENT', 'COUNTRY', 'CHAPTER')),
					scope_id VARCHAR(64) NOT NULL,
					member_id UUID NOT NULL,
					total_points INT NOT NULL DEFAULT 0,
					total_miles DOUBLE PRECISION NOT NULL DEFAULT 0,
					events_count INT NOT NULL DEFAULT 0,
					visitor_class VARCHAR(16) NOT NULL DEFAULT 'LOCAL',
					rank INT,
					last_calculated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT ux_ranking_snapshots_member
						UNIQUE (tenant_id, year, scope_type, scope_id, member_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create ranking_snapshots table: %w", err)
			}

			// Serves both the paginated leaderboard read and the strictly-greater count.
			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_ranking_snapshots_order
					ON ranking_snapshots(tenant_id, year, scope_type, scope_id, total_points DESC, total_miles DESC);
			`); err != nil {
				return fmt.Errorf("failed to create ranking_snapshots order index: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping ranking_snapshots table...")
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS ranking_snapshots;`); err != nil {
			return fmt.Errorf("failed to drop ranking_snapshots table: %w", err)
		}
		return nil
	})
}
