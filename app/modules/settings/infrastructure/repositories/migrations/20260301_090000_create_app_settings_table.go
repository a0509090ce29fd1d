package settingsmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating app_settings table...")
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS app_settings (
					key VARCHAR(128) PRIMARY KEY,
					value TEXT NOT NULL,
					description TEXT,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create app_settings table: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping app_settings table...")
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS app_settings;`); err != nil {
			return fmt.Errorf("failed to drop app_settings table: %w", err)
		}
		return nil
	})
}
