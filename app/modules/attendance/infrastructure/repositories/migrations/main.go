package attendancemigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the attendance ledger schema history.
var Migrations = migrate.NewMigrations()
