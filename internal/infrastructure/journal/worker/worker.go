package worker

import (
	"context"
	"fmt"

	domevent "github.com/minhngo-dev/stock-tally/internal/domain/event"
	dominv "github.com/minhngo-dev/stock-tally/internal/domain/inventory"
	domjournal "github.com/minhngo-dev/stock-tally/internal/domain/journal"
	"github.com/minhngo-dev/stock-tally/internal/observability"
	"github.com/minhngo-dev/stock-tally/internal/observability/logctx"
)

// Worker mirrors stock events from the bus into a journal sink, so observers get the
// same action log the service writes without being wired into every call site.
type Worker struct {
	subscriber domevent.Subscriber
	sink       domjournal.Sink
	entries    observability.Counter
}

func New(subscriber domevent.Subscriber, sink domjournal.Sink, tel observability.Observability) *Worker {
	if sink == nil {
		sink = domjournal.Nop()
	}
	metrics := observability.NopMetrics()
	if tel != nil {
		metrics = tel.Metrics()
	}
	return &Worker{
		subscriber: subscriber,
		sink:       sink,
		entries:    metrics.Counter(observability.MJournalEntries),
	}
}

func (w *Worker) Start() {
	w.subscriber.Subscribe(dominv.StockAddedEvent{}.EventName(), w.handleStockAdded)
	w.subscriber.Subscribe(dominv.StockRemovedEvent{}.EventName(), w.handleStockRemoved)
}

func (w *Worker) handleStockAdded(ctx context.Context, e domevent.Event) error {
	evt, ok := e.(dominv.StockAddedEvent)
	if !ok {
		return nil
	}

	entry := domjournal.NewEntry(fmt.Sprintf("Added %d of %s", evt.Quantity, evt.Item))
	w.sink.Append(entry)
	w.entries.Add(1, observability.L("event", evt.EventName()))

	logctx.FromOr(ctx, observability.NopLogger()).Debug("journal_mirrored",
		observability.F("entry_id", entry.ID),
		observability.F("item", evt.Item),
	)
	return nil
}

func (w *Worker) handleStockRemoved(ctx context.Context, e domevent.Event) error {
	evt, ok := e.(dominv.StockRemovedEvent)
	if !ok {
		return nil
	}

	entry := domjournal.NewEntry(fmt.Sprintf("Removed %d of %s", evt.Quantity, evt.Item))
	w.sink.Append(entry)
	w.entries.Add(1, observability.L("event", evt.EventName()))

	logctx.FromOr(ctx, observability.NopLogger()).Debug("journal_mirrored",
		observability.F("entry_id", entry.ID),
		observability.F("item", evt.Item),
	)
	return nil
}
