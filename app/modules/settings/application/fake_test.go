package settingsservice

import (
	"context"

	settingsdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/settings/infrastructure/repositories"
	"github.com/uptrace/bun"
)

type FakeSettingsRepo struct {
	trace []string

	ListAllFunc func(ctx context.Context, db bun.IDB) ([]settingsdb.Setting, error)
	GetFunc     func(ctx context.Context, db bun.IDB, key string) (*settingsdb.Setting, error)
	UpsertFunc  func(ctx context.Context, db bun.IDB, setting *settingsdb.Setting) error
	DeleteFunc  func(ctx context.Context, db bun.IDB, key string) error
}

func NewFakeSettingsRepo() *FakeSettingsRepo {
	return &FakeSettingsRepo{trace: []string{}}
}

func (f *FakeSettingsRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeSettingsRepo) ListAll(ctx context.Context, db bun.IDB) ([]settingsdb.Setting, error) {
	f.record("ListAll")
	if f.ListAllFunc != nil {
		return f.ListAllFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeSettingsRepo) Get(ctx context.Context, db bun.IDB, key string) (*settingsdb.Setting, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, db, key)
	}
	return nil, settingsdb.ErrNotFound
}

func (f *FakeSettingsRepo) Upsert(ctx context.Context, db bun.IDB, setting *settingsdb.Setting) error {
	f.record("Upsert")
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, db, setting)
	}
	return nil
}

func (f *FakeSettingsRepo) Delete(ctx context.Context, db bun.IDB, key string) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, key)
	}
	return nil
}

func (f *FakeSettingsRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ settingsdb.Repository = (*FakeSettingsRepo)(nil)
