package attendancemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating events, members and attendance_records tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS events (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					tenant_id UUID NOT NULL,
					name VARCHAR(200) NOT NULL,
					start_date TIMESTAMPTZ NOT NULL,
					mileage DOUBLE PRECISION NOT NULL DEFAULT 0,
					event_class SMALLINT NOT NULL DEFAULT 1,
					country VARCHAR(64),
					continent VARCHAR(64),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_events_tenant_start ON events(tenant_id, start_date);
			`); err != nil {
				return fmt.Errorf("failed to create events table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS members (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					tenant_id UUID NOT NULL,
					full_name VARCHAR(200) NOT NULL,
					chapter_id VARCHAR(64),
					country VARCHAR(64),
					continent VARCHAR(64),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_members_tenant ON members(tenant_id);
			`); err != nil {
				return fmt.Errorf("failed to create members table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS attendance_records (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					tenant_id UUID NOT NULL,
					event_id UUID NOT NULL REFERENCES events(id),
					member_id UUID NOT NULL REFERENCES members(id),
					vehicle_id UUID,
					status VARCHAR(16) NOT NULL DEFAULT 'PENDING'
						CHECK (status IN ('PENDING', 'CONFIRMED')),
					points_per_event INT NOT NULL DEFAULT 0,
					points_per_distance INT NOT NULL DEFAULT 0,
					points_awarded INT NOT NULL DEFAULT 0,
					visitor_class VARCHAR(16),
					confirmed_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE UNIQUE INDEX IF NOT EXISTS ux_attendance_confirmed_once
					ON attendance_records(tenant_id, event_id, member_id)
					WHERE status = 'CONFIRMED';
				CREATE INDEX IF NOT EXISTS idx_attendance_tenant_status
					ON attendance_records(tenant_id, status);
			`); err != nil {
				return fmt.Errorf("failed to create attendance_records table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping attendance ledger tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS attendance_records;
				DROP TABLE IF EXISTS members;
				DROP TABLE IF EXISTS events;
			`); err != nil {
				return fmt.Errorf("failed to drop attendance ledger tables: %w", err)
			}
			return nil
		})
	})
}
