// Package eventbus connects Watermill publishers and subscribers to NATS
// JetStream and provisions the streams the service reads and writes.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventBus is a Watermill publisher and subscriber backed by JetStream.
type EventBus interface {
	Publish(topic string, messages ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	CreateStream(ctx context.Context, streamName string, subjects ...string) error
	Close() error
}

// StreamSpec names a stream and the subjects it captures.
type StreamSpec struct {
	Name     string
	Subjects []string
}

// DefaultStreams covers every subject this service publishes or consumes.
var DefaultStreams = []StreamSpec{
	{Name: "attendance", Subjects: []string{"attendance.>"}},
	{Name: "points", Subjects: []string{"points.>"}},
	{Name: "ranking", Subjects: []string{"ranking.>"}},
}

type eventBus struct {
	publisher      message.Publisher
	subscriber     message.Subscriber
	js             jetstream.JetStream
	natsConn       *nc.Conn
	logger         *slog.Logger
	createdStreams map[string]bool
	streamMutex    sync.Mutex
}

// NewEventBus connects to NATS and builds the Watermill publisher and
// subscriber. queueGroup load-balances consumers across replicas.
func NewEventBus(ctx context.Context, natsURL, queueGroup string, logger *slog.Logger) (EventBus, error) {
	natsConn, err := nc.Connect(natsURL, nc.RetryOnFailedConnect(true), nc.MaxReconnects(-1))
	if err != nil {
		logger.Error("Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to initialize JetStream", slog.Any("error", err))
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}
	natsOptions := []nc.Option{nc.RetryOnFailedConnect(true)}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         natsURL,
			Marshaler:   marshaler,
			NatsOptions: natsOptions,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              natsURL,
			QueueGroupPrefix: queueGroup,
			SubscribersCount: 1,
			Unmarshaler:      marshaler,
			NatsOptions:      natsOptions,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	bus := &eventBus{
		publisher:      publisher,
		subscriber:     subscriber,
		js:             js,
		natsConn:       natsConn,
		logger:         logger,
		createdStreams: make(map[string]bool),
	}

	for _, spec := range DefaultStreams {
		if err := bus.CreateStream(ctx, spec.Name, spec.Subjects...); err != nil {
			_ = bus.Close()
			return nil, err
		}
	}

	return bus, nil
}

func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
	}
	if err := eb.publisher.Publish(topic, messages...); err != nil {
		eb.logger.Error("Failed to publish message", slog.String("topic", topic), slog.Any("error", err))
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.Info("Subscribing to subject", slog.String("subject", topic))
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject %s: %w", topic, err)
	}
	return messages, nil
}

// CreateStream creates streamName or adds any missing subjects to it.
func (eb *eventBus) CreateStream(ctx context.Context, streamName string, subjects ...string) error {
	eb.streamMutex.Lock()
	defer eb.streamMutex.Unlock()

	if eb.createdStreams[streamName] {
		return nil
	}

	stream, err := eb.js.Stream(ctx, streamName)
	switch {
	case errors.Is(err, jetstream.ErrStreamNotFound):
		if _, err := eb.js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     streamName,
			Subjects: subjects,
			MaxAge:   7 * 24 * time.Hour,
		}); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", streamName, err)
		}
		eb.logger.Info("Stream created", slog.String("stream_name", streamName), slog.Any("subjects", subjects))
	case err != nil:
		return fmt.Errorf("failed to check if stream exists: %w", err)
	default:
		info, err := stream.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stream info: %w", err)
		}
		missing := false
		for _, subject := range subjects {
			if !slices.Contains(info.Config.Subjects, subject) {
				info.Config.Subjects = append(info.Config.Subjects, subject)
				missing = true
			}
		}
		if missing {
			if _, err := eb.js.UpdateStream(ctx, info.Config); err != nil {
				return fmt.Errorf("failed to update stream with new subjects: %w", err)
			}
			eb.logger.Info("Stream updated with new subjects", slog.String("stream_name", streamName))
		}
	}

	eb.createdStreams[streamName] = true
	return nil
}

// Close closes the publisher, the subscriber and the NATS connection.
func (eb *eventBus) Close() error {
	var errs []error
	if eb.publisher != nil {
		if err := eb.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if eb.subscriber != nil {
		if err := eb.subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	if eb.natsConn != nil {
		eb.natsConn.Close()
	}
	return errors.Join(errs...)
}
