package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher publishes domain events. Implementations must be safe for
// concurrent use; services publish after their transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// KafkaEventPublisher publishes events to Kafka through watermill
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// KafkaConfig holds broker settings for the event publisher
type KafkaConfig struct {
	Brokers []string
}

func NewKafkaEventPublisher(cfg KafkaConfig, logger *slog.Logger) (*KafkaEventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   cfg.Brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    logger,
	}, nil
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.Debug("event published", "topic", topic, "event_type", event.Type, "event_id", event.ID)
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher records events in memory for tests
type MockEventPublisher struct {
	mu     sync.Mutex
	events []*Event
	logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (p *MockEventPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
	p.logger.Debug("mock event recorded", "topic", topic, "event_type", event.Type)
	return nil
}

func (p *MockEventPublisher) Close() error {
	return nil
}

// GetPublishedEvents returns a copy of everything published so far
func (p *MockEventPublisher) GetPublishedEvents() []*Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*Event, len(p.events))
	copy(out, p.events)
	return out
}

// ClearEvents resets the recorded events
func (p *MockEventPublisher) ClearEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = nil
}

// NoopEventPublisher drops events; used when no broker is configured.
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(ctx context.Context, topic string, event *Event) error { return nil }
func (NoopEventPublisher) Close() error                                                  { return nil }
