package eventbus

import (
	"context"
	"runtime/debug"
	"sync"

	domevent "github.com/minhngo-dev/stock-tally/internal/domain/event"
	"github.com/minhngo-dev/stock-tally/internal/observability"
	"github.com/minhngo-dev/stock-tally/internal/observability/logctx"
)

const componentBus = "eventbus"

// Bus is an in-memory event bus fanning published events out to subscribers from a
// single dispatch goroutine. It is not durable; events still queued when the process
// exits are lost, which is fine for an action-log side channel.
type Bus struct {
	mu        sync.RWMutex
	subs      map[string][]domevent.Handler
	queue     chan domevent.Event
	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	done      chan struct{}
	log       observability.Logger
}

func New(logger observability.Logger) *Bus {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Bus{
		subs:  make(map[string][]domevent.Handler),
		queue: make(chan domevent.Event, 256),
		done:  make(chan struct{}),
		log:   logger.With(observability.F("component", componentBus)),
	}
}

func (b *Bus) Subscribe(eventName string, h domevent.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		b.mu.Lock()
		b.started = true
		b.mu.Unlock()
		go b.dispatchLoop(context.WithoutCancel(ctx))
		logctx.FromOr(ctx, b.log).Info("event_bus_started")
	})
}

// Stop closes the queue and waits for already-published events to be handled.
func (b *Bus) Stop(ctx context.Context) {
	b.stopOnce.Do(func() {
		close(b.queue)
		b.mu.RLock()
		started := b.started
		b.mu.RUnlock()
		if started {
			<-b.done
		}
		logctx.FromOr(ctx, b.log).Info("event_bus_stopped")
	})
}

func (b *Bus) Publish(ctx context.Context, e domevent.Event) error {
	if e == nil {
		return nil
	}
	select {
	case b.queue <- e:
		logctx.FromOr(ctx, b.log).Debug("event_enqueued",
			observability.F("event", e.EventName()),
		)
		return nil
	case <-ctx.Done():
		logctx.FromOr(ctx, b.log).Warn("event_enqueue_aborted",
			observability.F("event", e.EventName()),
			observability.F("error", ctx.Err()),
		)
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for e := range b.queue {
		b.fanout(ctx, e)
	}
}

func (b *Bus) fanout(ctx context.Context, e domevent.Event) {
	name := e.EventName()

	b.mu.RLock()
	handlers := append([]domevent.Handler(nil), b.subs[name]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.log.Debug("event_dropped_no_subscriber",
			observability.F("event", name),
		)
		return
	}

	ctx = logctx.With(ctx, b.log.With(observability.F("event", name)))
	for _, h := range handlers {
		b.invoke(ctx, name, h, e)
	}
}

func (b *Bus) invoke(ctx context.Context, name string, h domevent.Handler, e domevent.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event_handler_panic",
				observability.F("event", name),
				observability.F("panic", r),
				observability.F("stack", string(debug.Stack())),
			)
		}
	}()

	if err := h(ctx, e); err != nil {
		b.log.Warn("event_handler_error",
			observability.F("event", name),
			observability.F("error", err),
		)
	}
}
