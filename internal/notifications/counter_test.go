package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasmedina/medina-backend/pkg/enums"
	"github.com/atlasmedina/medina-backend/pkg/events"
	"github.com/atlasmedina/medina-backend/pkg/logger"
)

func insertEvent(status enums.OrderStatus) *events.OrderEvent {
	return &events.OrderEvent{
		Kind:        events.KindOrderInsert,
		OrderID:     uuid.New(),
		OrderNumber: "ORD-20260830-TEST01",
		NewStatus:   status,
		OccurredAt:  time.Now().UTC(),
	}
}

func updateEvent(oldStatus, newStatus enums.OrderStatus) *events.OrderEvent {
	return &events.OrderEvent{
		Kind:        events.KindOrderUpdate,
		OrderID:     uuid.New(),
		OrderNumber: "ORD-20260830-TEST02",
		OldStatus:   &oldStatus,
		NewStatus:   newStatus,
		OccurredAt:  time.Now().UTC(),
	}
}

func TestCounterInsertRaisesPending(t *testing.T) {
	counter := NewCounter()

	counter.Apply(insertEvent(enums.OrderStatusPending))
	counter.Apply(insertEvent(enums.OrderStatusPending))
	assert.Equal(t, int64(2), counter.Value())

	// non-pending inserts do not move the badge
	counter.Apply(insertEvent(enums.OrderStatusConfirmed))
	assert.Equal(t, int64(2), counter.Value())
}

func TestCounterUpdateLeavingPendingLowers(t *testing.T) {
	counter := NewCounter()
	counter.Resync(2)

	counter.Apply(updateEvent(enums.OrderStatusPending, enums.OrderStatusConfirmed))
	assert.Equal(t, int64(1), counter.Value())

	// transitions between non-pending statuses are neutral
	counter.Apply(updateEvent(enums.OrderStatusConfirmed, enums.OrderStatusDelivered))
	assert.Equal(t, int64(1), counter.Value())

	// moving back into pending raises it again
	counter.Apply(updateEvent(enums.OrderStatusCanceled, enums.OrderStatusPending))
	assert.Equal(t, int64(2), counter.Value())
}

func TestCounterNeverGoesNegative(t *testing.T) {
	counter := NewCounter()

	counter.Apply(updateEvent(enums.OrderStatusPending, enums.OrderStatusDelivered))
	assert.Equal(t, int64(0), counter.Value())

	counter.Resync(-5)
	assert.Equal(t, int64(0), counter.Value())
}

func TestCounterResyncReplacesValue(t *testing.T) {
	counter := NewCounter()
	counter.Apply(insertEvent(enums.OrderStatusPending))

	counter.Resync(7)
	assert.Equal(t, int64(7), counter.Value())
}

type stubSubscriber struct{}

func (stubSubscriber) Subscribe(context.Context, ...string) (*redis.PubSub, error) {
	return nil, assert.AnError
}

type stubPendingSource struct {
	pending int64
}

func (s stubPendingSource) CountPending(context.Context) (int64, error) {
	return s.pending, nil
}

func testConsumer(t *testing.T, counter *Counter) *Consumer {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	consumer, err := NewConsumer(stubSubscriber{}, "medina:events:orders", stubPendingSource{pending: 3}, counter, logg)
	require.NoError(t, err)
	return consumer
}

func TestConsumerHandleAppliesEvent(t *testing.T) {
	counter := NewCounter()
	consumer := testConsumer(t, counter)

	payload, err := json.Marshal(insertEvent(enums.OrderStatusPending))
	require.NoError(t, err)

	consumer.Handle(context.Background(), payload)
	assert.Equal(t, int64(1), counter.Value())
}

func TestConsumerHandleDropsGarbage(t *testing.T) {
	counter := NewCounter()
	counter.Resync(4)
	consumer := testConsumer(t, counter)

	consumer.Handle(context.Background(), []byte("{broken"))
	consumer.Handle(context.Background(), []byte(`{"kind":"mystery"}`))
	assert.Equal(t, int64(4), counter.Value())
}

func TestConsumerResync(t *testing.T) {
	counter := NewCounter()
	consumer := testConsumer(t, counter)

	require.NoError(t, consumer.resync(context.Background()))
	assert.Equal(t, int64(3), counter.Value())
}
