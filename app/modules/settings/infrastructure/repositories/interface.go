package settingsdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository persists tunable settings. A nil db uses the repository's
// default connection.
type Repository interface {
	// ListAll returns every stored setting ordered by key.
	ListAll(ctx context.Context, db bun.IDB) ([]Setting, error)

	// Get returns one setting or ErrNotFound.
	Get(ctx context.Context, db bun.IDB, key string) (*Setting, error)

	// Upsert creates or replaces a setting.
	Upsert(ctx context.Context, db bun.IDB, setting *Setting) error

	// Delete removes a setting. Returns ErrNoRowsAffected if it did not exist.
	Delete(ctx context.Context, db bun.IDB, key string) error
}
