// Package notify publishes review lifecycle events to downstream consumers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/soaringjerry/valoracion/internal/models"
)

// EventType names a review lifecycle transition.
type EventType string

const (
	ReviewCreated EventType = "created"
	ReviewDeleted EventType = "deleted"
)

// Event is the payload written for every review create or delete.
type Event struct {
	Type       EventType      `json:"type"`
	ReviewID   int64          `json:"review_id"`
	Review     *models.Review `json:"review,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Key follows the "review.<type>.<id>" convention so consumers can route
// without decoding the value.
func (e Event) Key() string {
	return fmt.Sprintf("review.%s.%d", e.Type, e.ReviewID)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka writes events as JSON messages to a single topic.
type Kafka struct {
	w messageWriter
}

// NewKafka builds a publisher for topic on brokers.
func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           5 * time.Second,
	}}
}

func (k *Kafka) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", e.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(e.Key()),
		Value: value,
		Time:  e.OccurredAt,
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", e.Type, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.w.Close()
}
