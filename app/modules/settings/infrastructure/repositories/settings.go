package settingsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Impl implements Repository with bun.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a settings repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) ListAll(ctx context.Context, db bun.IDB) ([]Setting, error) {
	db = r.resolveDB(db)
	var settings []Setting
	if err := db.NewSelect().Model(&settings).Order("key ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("settingsdb.ListAll: %w", err)
	}
	return settings, nil
}

func (r *Impl) Get(ctx context.Context, db bun.IDB, key string) (*Setting, error) {
	db = r.resolveDB(db)
	setting := new(Setting)
	err := db.NewSelect().Model(setting).Where("key = ?", key).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("settingsdb.Get: %w", err)
	}
	return setting, nil
}

func (r *Impl) Upsert(ctx context.Context, db bun.IDB, setting *Setting) error {
	db = r.resolveDB(db)
	setting.UpdatedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(setting).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("description = COALESCE(EXCLUDED.description, ?TableAlias.description)").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("settingsdb.Upsert: %w", err)
	}
	return nil
}

func (r *Impl) Delete(ctx context.Context, db bun.IDB, key string) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().Model((*Setting)(nil)).Where("key = ?", key).Exec(ctx)
	if err != nil {
		return fmt.Errorf("settingsdb.Delete: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("settingsdb.Delete: %w", err)
	}
	if rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
