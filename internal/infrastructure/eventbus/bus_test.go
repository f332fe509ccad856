package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domevent "github.com/minhngo-dev/stock-tally/internal/domain/event"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string { return e.name }

type recorder struct {
	mu     sync.Mutex
	events []domevent.Event
}

func (r *recorder) handle(_ context.Context, e domevent.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) seen() []domevent.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domevent.Event(nil), r.events...)
}

func TestBus_DeliversToSubscribers(t *testing.T) {
	bus := New(nil)
	rec := &recorder{}
	bus.Subscribe("inventory.stock_added", rec.handle)

	ctx := context.Background()
	bus.Start(ctx)
	require.NoError(t, bus.Publish(ctx, testEvent{name: "inventory.stock_added"}))
	require.NoError(t, bus.Publish(ctx, testEvent{name: "inventory.stock_added"}))
	bus.Stop(ctx)

	assert.Len(t, rec.seen(), 2)
}

func TestBus_IgnoresUnsubscribedEvents(t *testing.T) {
	bus := New(nil)
	rec := &recorder{}
	bus.Subscribe("inventory.stock_added", rec.handle)

	ctx := context.Background()
	bus.Start(ctx)
	require.NoError(t, bus.Publish(ctx, testEvent{name: "inventory.stock_removed"}))
	bus.Stop(ctx)

	assert.Empty(t, rec.seen())
}

func TestBus_FansOutToAllHandlers(t *testing.T) {
	bus := New(nil)
	first := &recorder{}
	second := &recorder{}
	bus.Subscribe("e", first.handle)
	bus.Subscribe("e", second.handle)

	ctx := context.Background()
	bus.Start(ctx)
	require.NoError(t, bus.Publish(ctx, testEvent{name: "e"}))
	bus.Stop(ctx)

	assert.Len(t, first.seen(), 1)
	assert.Len(t, second.seen(), 1)
}

func TestBus_SurvivesHandlerPanicAndError(t *testing.T) {
	bus := New(nil)
	rec := &recorder{}
	bus.Subscribe("e", func(context.Context, domevent.Event) error {
		panic("boom")
	})
	bus.Subscribe("e", func(context.Context, domevent.Event) error {
		return errors.New("handler failed")
	})
	bus.Subscribe("e", rec.handle)

	ctx := context.Background()
	bus.Start(ctx)
	require.NoError(t, bus.Publish(ctx, testEvent{name: "e"}))
	bus.Stop(ctx)

	// The panicking and failing handlers must not starve the healthy one.
	assert.Len(t, rec.seen(), 1)
}

func TestBus_PublishNilEvent(t *testing.T) {
	bus := New(nil)
	ctx := context.Background()
	bus.Start(ctx)
	require.NoError(t, bus.Publish(ctx, nil))
	bus.Stop(ctx)
}
