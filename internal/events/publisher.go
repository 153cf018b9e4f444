// Package events publishes domain events to Kafka. Publishing is best
// effort; the request path never fails because a broker is down.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Agus3160/blog-web-app-server-go/pkg/kafka"
	"github.com/Agus3160/blog-web-app-server-go/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types emitted by the application
const (
	EventUserRegistered      = "user.registered"
	EventUserPasswordChanged = "user.password_changed"
	EventUserDeleted         = "user.deleted"
	EventPostCreated         = "post.created"
)

// Event is the envelope written to the topic
type Event struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data"`
}

// Publisher emits domain events
type Publisher interface {
	Publish(ctx context.Context, eventType string, data map[string]interface{})
	Close()
}

// KafkaPublisher implements Publisher on a Kafka topic
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaPublisher creates a KafkaPublisher
func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish serializes and sends the event. Failures are logged, not returned.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, data map[string]interface{}) {
	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Data:       data,
	}

	value, err := json.Marshal(event)
	if err != nil {
		logger.Get().Error("failed to marshal event", zap.String("type", eventType), zap.Error(err))
		return
	}

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(eventType),
		Value:     value,
		Timestamp: event.OccurredAt,
	}
	if err := p.producer.Produce(ctx, msg); err != nil {
		logger.Get().Error("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}

// Close closes the underlying producer
func (p *KafkaPublisher) Close() {
	p.producer.Close()
}

// NoOpPublisher discards events; used when Kafka is disabled
type NoOpPublisher struct{}

// NewNoOpPublisher creates a NoOpPublisher
func NewNoOpPublisher() *NoOpPublisher { return &NoOpPublisher{} }

// Publish does nothing
func (p *NoOpPublisher) Publish(ctx context.Context, eventType string, data map[string]interface{}) {
}

// Close does nothing
func (p *NoOpPublisher) Close() {}
