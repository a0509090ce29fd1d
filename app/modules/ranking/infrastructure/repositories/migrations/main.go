package rankingmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the ranking snapshot schema history.
var Migrations = migrate.NewMigrations()
