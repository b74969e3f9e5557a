package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"mediq/pkg/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

var ErrProducerClosed = errors.New("event producer is closed")

// Publisher emits reservation lifecycle events. A nil *Producer is a valid
// Publisher that drops every event, so services never need to branch on
// whether streaming is configured.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type Producer struct {
	writer *kafka.Writer
	log    *logger.Logger
	closed bool
	mu     sync.RWMutex
}

func NewProducer(brokers []string, topic string, log *logger.Logger) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}

	if topic == "" {
		return nil, errors.New("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error("Kafka writer error", "message", msg, "args", args)
		}),
	}

	return &Producer{
		writer: writer,
		log:    log,
	}, nil
}

func (p *Producer) Publish(ctx context.Context, event Event) error {
	if p == nil {
		return nil
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrProducerClosed
	}
	p.mu.RUnlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	key := event.AppointmentID
	if key == "" {
		key = event.ID
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	}); err != nil {
		p.log.Error("Failed to publish event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err,
		)
		return err
	}

	p.log.Debug("Event published",
		"event_id", event.ID,
		"event_type", event.Type,
		"appointment_id", event.AppointmentID,
	)

	return nil
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.writer.Close()
}
