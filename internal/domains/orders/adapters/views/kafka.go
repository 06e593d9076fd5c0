package views

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
)

var _ ports.ViewInvalidator = (*KafkaPublisher)(nil)

// invalidationEvent is the wire payload published for each stale view.
type invalidationEvent struct {
	View       string    `json:"view"`
	OccurredAt time.Time `json:"occurredAt"`
}

// messageWriter is the subset of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher broadcasts view invalidations to external read models.
// Publishing is best effort: the write that triggered the invalidation has
// already committed, so a broker outage is logged and swallowed rather than
// surfaced to the caller.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
	now    func() time.Time
}

// NewKafkaPublisher builds a publisher for the given broker and topic.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}
	return &KafkaPublisher{writer: writer, logger: logger, now: time.Now}
}

func (p *KafkaPublisher) Invalidate(ctx context.Context, views ...string) {
	if len(views) == 0 {
		return
	}
	messages := make([]kafka.Message, 0, len(views))
	for _, view := range views {
		payload, err := json.Marshal(invalidationEvent{View: view, OccurredAt: p.now().UTC()})
		if err != nil {
			p.logError(ctx, "failed to encode invalidation event", err, view)
			continue
		}
		messages = append(messages, kafka.Message{Key: []byte(view), Value: payload})
	}
	if len(messages) == 0 {
		return
	}
	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		p.logError(ctx, "failed to publish view invalidation", err, views...)
	}
}

// Close flushes and releases the underlying writer.
func (p *KafkaPublisher) Close() error {
	if writer, ok := p.writer.(*kafka.Writer); ok {
		return writer.Close()
	}
	return nil
}

func (p *KafkaPublisher) logError(ctx context.Context, msg string, err error, views ...string) {
	if p.logger == nil {
		return
	}
	p.logger.LogAttrs(ctx, slog.LevelError, msg,
		slog.Any("views", views),
		slog.String("error", err.Error()))
}
