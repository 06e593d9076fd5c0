package views

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
)

func TestCache_PutGetInvalidate(t *testing.T) {
	cache := NewCache()

	cache.Put(ports.ViewUserOrders, "alice", []string{"order-1"})
	cache.Put(ports.ViewUserOrders, "bob", []string{"order-2"})
	cache.Put(ports.ViewAdminOrders, "page-0", "all")

	value, ok := cache.Get(ports.ViewUserOrders, "alice")
	require.True(t, ok)
	assert.Equal(t, []string{"order-1"}, value)

	cache.Invalidate(context.Background(), ports.ViewUserOrders)

	_, ok = cache.Get(ports.ViewUserOrders, "alice")
	assert.False(t, ok, "every variant of the view is dropped")
	_, ok = cache.Get(ports.ViewUserOrders, "bob")
	assert.False(t, ok)

	_, ok = cache.Get(ports.ViewAdminOrders, "page-0")
	assert.True(t, ok, "other views are untouched")
}

func TestCache_GetUnknownView(t *testing.T) {
	cache := NewCache()
	_, ok := cache.Get(ports.ViewInventoryList, "page-0")
	assert.False(t, ok)
}

func TestMulti_FansOut(t *testing.T) {
	first := NewCache()
	second := NewCache()
	first.Put(ports.ViewUserOrders, "alice", 1)
	second.Put(ports.ViewUserOrders, "alice", 2)

	Multi{first, nil, second}.Invalidate(context.Background(), ports.ViewUserOrders)

	_, ok := first.Get(ports.ViewUserOrders, "alice")
	assert.False(t, ok)
	_, ok = second.Get(ports.ViewUserOrders, "alice")
	assert.False(t, ok)
}

type stubWriter struct {
	messages []kafka.Message
	err      error
}

func (s *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msgs...)
	return nil
}

func TestKafkaPublisher_PublishesOneMessagePerView(t *testing.T) {
	writer := &stubWriter{}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	publisher := &KafkaPublisher{writer: writer, now: func() time.Time { return at }}

	publisher.Invalidate(context.Background(), ports.ViewUserOrders, ports.ViewInventoryList)

	require.Len(t, writer.messages, 2)
	assert.Equal(t, []byte(ports.ViewUserOrders), writer.messages[0].Key)
	assert.JSONEq(t,
		`{"view":"userOrders","occurredAt":"2026-03-01T12:00:00Z"}`,
		string(writer.messages[0].Value))
}

func TestKafkaPublisher_SwallowsBrokerErrors(t *testing.T) {
	writer := &stubWriter{err: errors.New("broker unavailable")}
	publisher := &KafkaPublisher{
		writer: writer,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}

	assert.NotPanics(t, func() {
		publisher.Invalidate(context.Background(), ports.ViewUserOrders)
	})
}

func TestKafkaPublisher_NoViewsNoWrite(t *testing.T) {
	writer := &stubWriter{}
	publisher := &KafkaPublisher{writer: writer, now: time.Now}

	publisher.Invalidate(context.Background())
	assert.Empty(t, writer.messages)
}
