package settingsmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the settings module schema history.
var Migrations = migrate.NewMigrations()
