// Package attr provides slog attribute constructors with consistent keys.
package attr

import (
	"context"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
)

type correlationIDKey struct{}

// WithCorrelationID stores a correlation id in the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationIDFromContext returns the correlation id stored in ctx, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// ExtractCorrelationID returns the context correlation id as an attribute.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	return slog.String("correlation_id", CorrelationIDFromContext(ctx))
}

// CorrelationIDFromMsg returns the message correlation id as an attribute.
func CorrelationIDFromMsg(msg *message.Message) slog.Attr {
	if msg == nil {
		return slog.String("correlation_id", "")
	}
	return slog.String("correlation_id", middleware.MessageCorrelationID(msg))
}

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

func Float64(key string, value float64) slog.Attr { return slog.Float64(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

func Time(key string, value time.Time) slog.Attr { return slog.Time(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

// UUID renders a uuid under key.
func UUID(key string, value uuid.UUID) slog.Attr { return slog.String(key, value.String()) }

// TenantID is the attribute every tenant-scoped log line carries.
func TenantID(value uuid.UUID) slog.Attr { return slog.String("tenant_id", value.String()) }

// Error renders err under the "error" key. A nil error renders as empty.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
