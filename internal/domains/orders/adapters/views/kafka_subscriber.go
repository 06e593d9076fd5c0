package views

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
)

// messageReader is the subset of kafka.Reader the subscriber needs.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaSubscriber consumes invalidation events published by other processes
// and applies them to a local invalidator, typically the in-process Cache.
// Each instance must consume the whole topic, so the caller supplies a
// group ID unique to the process.
type KafkaSubscriber struct {
	reader messageReader
	target ports.ViewInvalidator
	logger *slog.Logger
}

// NewKafkaSubscriber builds a subscriber on the given brokers and topic.
func NewKafkaSubscriber(brokers []string, topic, groupID string, target ports.ViewInvalidator, logger *slog.Logger) *KafkaSubscriber {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    1 << 20,
	})
	return &KafkaSubscriber{reader: reader, target: target, logger: logger}
}

// Run consumes until the context is cancelled or the reader is closed.
func (s *KafkaSubscriber) Run(ctx context.Context) {
	for {
		message, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			s.logWarn(ctx, "invalidation consumer stopped", err)
			return
		}
		var event invalidationEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			s.logWarn(ctx, "skipping malformed invalidation event", err)
			continue
		}
		if event.View == "" {
			continue
		}
		if s.target != nil {
			s.target.Invalidate(ctx, event.View)
		}
	}
}

// Close shuts the underlying reader down, which also unblocks Run.
func (s *KafkaSubscriber) Close() error {
	return s.reader.Close()
}

func (s *KafkaSubscriber) logWarn(ctx context.Context, msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, msg, slog.String("error", err.Error()))
}
