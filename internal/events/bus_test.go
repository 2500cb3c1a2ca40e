// internal/events/bus_test.go
package events

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	bus := NewBus(zap.NewNop(), 16)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Shutdown(ctx)
	})
	return bus
}

func TestPublishSyncDelivers(t *testing.T) {
	bus := newTestBus(t)

	var got Event
	bus.SubscribeFunc(PriceUpdated, func(ctx context.Context, e Event) error {
		got = e
		return nil
	})

	event := PriceUpdatedEvent{
		BaseEvent: NewBase(PriceUpdated),
		Mint:      "So11111111111111111111111111111111111111112",
		PriceUSD:  decimal.RequireFromString("147.25"),
	}
	require.NoError(t, bus.PublishSync(context.Background(), event))

	require.NotNil(t, got)
	assert.Equal(t, PriceUpdated, got.Type())
	assert.True(t, got.(PriceUpdatedEvent).PriceUSD.Equal(decimal.RequireFromString("147.25")))
}

func TestPublishAsyncDelivers(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan Event, 1)
	bus.SubscribeFunc(PreviewReady, func(ctx context.Context, e Event) error {
		received <- e
		return nil
	})

	event := PreviewReadyEvent{
		BaseEvent: NewBase(PreviewReady),
		Seq:       7,
		Severity:  "caution",
	}
	require.NoError(t, bus.Publish(event))

	select {
	case got := <-received:
		assert.Equal(t, uint64(7), got.(PreviewReadyEvent).Seq)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestPublishSyncSkipsOtherTypes(t *testing.T) {
	bus := newTestBus(t)

	called := false
	bus.SubscribeFunc(PreviewFailed, func(ctx context.Context, e Event) error {
		called = true
		return nil
	})

	event := PriceUpdatedEvent{BaseEvent: NewBase(PriceUpdated)}
	require.NoError(t, bus.PublishSync(context.Background(), event))
	assert.False(t, called)
}

func TestUnsubscribe(t *testing.T) {
	bus := newTestBus(t)

	calls := 0
	sub := bus.SubscribeFunc(BasisChanged, func(ctx context.Context, e Event) error {
		calls++
		return nil
	})

	event := BasisChangedEvent{BaseEvent: NewBase(BasisChanged), Mint: "abc", Action: "set"}
	require.NoError(t, bus.PublishSync(context.Background(), event))
	assert.Equal(t, 1, calls)

	sub.Unsubscribe()
	require.NoError(t, bus.PublishSync(context.Background(), event))
	assert.Equal(t, 1, calls, "unsubscribed handler must not run")
}

func TestPublishSyncHandlerError(t *testing.T) {
	bus := newTestBus(t)

	bus.SubscribeFunc(PreviewFailed, func(ctx context.Context, e Event) error {
		return assert.AnError
	})

	event := PreviewFailedEvent{BaseEvent: NewBase(PreviewFailed), Seq: 1, Reason: "quote"}
	err := bus.PublishSync(context.Background(), event)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPublishAfterShutdown(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Shutdown(ctx))

	err := bus.Publish(PriceUpdatedEvent{BaseEvent: NewBase(PriceUpdated)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutting down")
}

func TestStats(t *testing.T) {
	bus := newTestBus(t)
	bus.SubscribeFunc(PriceUpdated, func(ctx context.Context, e Event) error { return nil })
	bus.SubscribeFunc(PriceUpdated, func(ctx context.Context, e Event) error { return nil })

	stats := bus.Stats()
	assert.Equal(t, 16, stats["buffer_size"])
	assert.Equal(t, 1, stats["event_types"])

	counts := stats["handlers_per_type"].(map[string]int)
	assert.Equal(t, 2, counts[string(PriceUpdated)])
}
