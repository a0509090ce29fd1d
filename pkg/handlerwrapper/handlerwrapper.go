// Package handlerwrapper adapts typed event handlers to Watermill.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Result is one outgoing message produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// TypedHandler consumes a decoded payload and returns messages to publish.
type TypedHandler[T any] func(ctx context.Context, payload *T) ([]Result, error)

// NewJSONMessage encodes payload as a Watermill message that carries the
// correlation id found in ctx.
func NewJSONMessage(ctx context.Context, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	if id := attr.CorrelationIDFromContext(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}
	msg.SetContext(ctx)
	return msg, nil
}

// WrapTyped decodes the incoming JSON payload into T, runs handler inside a
// span and publishes every returned Result. Payloads that cannot be decoded
// are logged and acknowledged so they are not redelivered forever.
func WrapTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	publisher message.Publisher,
	handler TypedHandler[T],
) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ctx := msg.Context()
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = watermill.NewUUID()
		}
		ctx = attr.WithCorrelationID(ctx, correlationID)

		var span trace.Span
		if tracer != nil {
			ctx, span = tracer.Start(ctx, handlerName, trace.WithAttributes(
				attribute.String("message.uuid", msg.UUID),
				attribute.String("correlation_id", correlationID),
			))
		} else {
			span = trace.SpanFromContext(ctx)
		}
		defer span.End()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Dropping message with undecodable payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			span.RecordError(err)
			return nil
		}

		out, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			span.RecordError(err)
			return fmt.Errorf("%s: %w", handlerName, err)
		}

		for _, res := range out {
			outMsg, err := NewJSONMessage(ctx, res.Payload)
			if err != nil {
				return fmt.Errorf("%s: %w", handlerName, err)
			}
			for k, v := range res.Metadata {
				outMsg.Metadata.Set(k, v)
			}
			if err := publisher.Publish(res.Topic, outMsg); err != nil {
				span.RecordError(err)
				return fmt.Errorf("%s: failed to publish to %s: %w", handlerName, res.Topic, err)
			}
			logger.DebugContext(ctx, "Published handler result",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("topic", res.Topic),
			)
		}
		return nil
	}
}
