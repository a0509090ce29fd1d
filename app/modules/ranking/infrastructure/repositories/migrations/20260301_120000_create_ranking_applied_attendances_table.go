package rankingmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating ranking_applied_attendances table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS ranking_applied_attendances (
					tenant_id UUID NOT NULL,
					attendance_id UUID NOT NULL,
					year INT NOT NULL,
					scope_type VARCHAR(16) NOT NULL,
					scope_id VARCHAR(64) NOT NULL,
					applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (tenant_id, attendance_id, scope_type, scope_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create ranking_applied_attendances table: %w", err)
			}

			// Rebuilds reset the markers one partition at a time.
			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_ranking_applied_attendances_partition
					ON ranking_applied_attendances(tenant_id, year, scope_type, scope_id);
			`); err != nil {
				return fmt.Errorf("failed to create ranking_applied_attendances partition index: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping ranking_applied_attendances table...")
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS ranking_applied_attendances;`); err != nil {
			return fmt.Errorf("failed to drop ranking_applied_attendances table: %w", err)
		}
		return nil
	})
}
