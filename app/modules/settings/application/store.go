package settingsservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	settingsdb "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/settings/infrastructure/repositories"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/attr"
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/observability"
	"go.opentelemetry.io/otel/trace"
)

// Store is a Source backed by the app_settings table. Reads are served from
// an in-memory snapshot that Refresh replaces wholesale.
type Store struct {
	repo    settingsdb.Repository
	logger  *slog.Logger
	metrics observability.OperationMetrics
	tracer  trace.Tracer

	mu       sync.RWMutex
	values   map[string]string
	loadedAt time.Time
}

var _ Source = (*Store)(nil)

// NewStore creates an empty Store. Call Refresh before serving reads; until
// then every accessor returns its fallback.
func NewStore(repo settingsdb.Repository, logger *slog.Logger, metrics observability.OperationMetrics, tracer trace.Tracer) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &Store{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		values:  map[string]string{},
	}
}

// Refresh reloads every setting. On error the previous snapshot stays active.
func (s *Store) Refresh(ctx context.Context) error {
	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "SettingsStore.Refresh")
		defer span.End()
	}

	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "Refresh", "SettingsStore")
	defer func() {
		s.metrics.RecordOperationDuration(ctx, "Refresh", "SettingsStore", time.Since(start))
	}()

	rows, err := s.repo.ListAll(ctx, nil)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "Refresh", "SettingsStore")
		return fmt.Errorf("settings refresh: %w", err)
	}

	next := make(map[string]string, len(rows))
	for _, row := range rows {
		next[row.Key] = row.Value
	}

	s.mu.Lock()
	s.values = next
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.metrics.RecordOperationSuccess(ctx, "Refresh", "SettingsStore")
	s.logger.DebugContext(ctx, "Settings refreshed", attr.Int("count", len(next)))
	return nil
}

// Run refreshes the snapshot every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.WarnContext(ctx, "Settings refresh failed, keeping previous values", attr.Error(err))
			}
		}
	}
}

// Set persists a value and makes it visible to readers immediately.
func (s *Store) Set(ctx context.Context, key, value, description string) error {
	if key == "" {
		return errors.New("settings key cannot be empty")
	}
	if err := s.repo.Upsert(ctx, nil, &settingsdb.Setting{Key: key, Value: value, Description: description}); err != nil {
		return err
	}
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Unset deletes a value so readers fall back to their defaults.
func (s *Store) Unset(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, nil, key); err != nil && !errors.Is(err, settingsdb.ErrNoRowsAffected) {
		return err
	}
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current values.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// LoadedAt reports when the snapshot was last refreshed.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

func (s *Store) lookup(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Store) GetInt(key string, def int) int { return parseInt(s.lookup, key, def) }

func (s *Store) GetDouble(key string, def float64) float64 { return parseDouble(s.lookup, key, def) }

func (s *Store) GetString(key string) string {
	v, _ := s.lookup(key)
	return v
}

func (s *Store) GetBool(key string, def bool) bool { return parseBool(s.lookup, key, def) }
