// Package bundb opens the Postgres connection shared by every repository and
// runs the schema migrations of each module.
package bundb

import (
	"context"
	"database/sql"
	"fmt"

	attendancedb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/attendance/infrastructure/repositories"
	rankingdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/infrastructure/repositories"
	settingsdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/settings/infrastructure/repositories"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := BunDB(sqldb)
	db.RegisterModel(
		(*settingsdb.Setting)(nil),
		(*attendancedb.Event)(nil),
		(*attendancedb.Member)(nil),
		(*attendancedb.AttendanceRecord)(nil),
		(*rankingdb.RankingSnapshot)(nil),
		(*rankingdb.AppliedAttendance)(nil),
	)
	return db, nil
}

// BunDB wraps an existing connection pool.
func BunDB(sqldb *sql.DB) *bun.DB {
	return bun.NewDB(sqldb, pgdialect.New())
}
