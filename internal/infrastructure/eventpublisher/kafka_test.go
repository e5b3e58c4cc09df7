package eventpublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fintrack/internal/domain"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherKeysByOwner(t *testing.T) {
	w := &recordingWriter{}
	pub := newKafkaPublisher(w)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	err := pub.Publish(context.Background(), &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateID:   "tx-1",
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypeTransactionCommitted,
		Payload:       map[string]any{"owner_id": "owner-7", "transaction_id": "tx-1"},
		CreatedAt:     created,
	})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "owner-7", string(msg.Key))
	assert.JSONEq(t, `{"owner_id":"owner-7","transaction_id":"tx-1"}`, string(msg.Value))
	assert.Equal(t, created, msg.Time)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "evt-1", headers["event_id"])
	assert.Equal(t, domain.EventTypeTransactionCommitted, headers["event_type"])

	require.NoError(t, pub.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherFallsBackToAggregateKey(t *testing.T) {
	w := &recordingWriter{}
	pub := newKafkaPublisher(w)

	require.NoError(t, pub.Publish(context.Background(), &domain.OutboxEvent{ID: "evt-2", AggregateID: "tx-2"}))
	assert.Equal(t, "tx-2", string(w.messages[0].Key))
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	brokerErr := errors.New("leader not available")
	pub := newKafkaPublisher(&recordingWriter{err: brokerErr})

	err := pub.Publish(context.Background(), &domain.OutboxEvent{ID: "evt-3"})
	assert.ErrorIs(t, err, brokerErr)
}
