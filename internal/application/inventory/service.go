package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	domevent "github.com/minhngo-dev/stock-tally/internal/domain/event"
	dominv "github.com/minhngo-dev/stock-tally/internal/domain/inventory"
	domjournal "github.com/minhngo-dev/stock-tally/internal/domain/journal"
	"github.com/minhngo-dev/stock-tally/internal/observability"
	"github.com/minhngo-dev/stock-tally/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "inventory-service"

	opAdd    = "inventory.add"
	opRemove = "inventory.remove"
	opSave   = "inventory.save"
	opLoad   = "inventory.load"
	opReport = "inventory.report"

	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeMissing  = "missing"
	outcomeReset    = "reset"
	outcomeError    = "error"

	spanPrefix = "Inventory."
)

// Service is the use-case layer around the store: it applies the validation and
// failure policy, writes the action journal, publishes domain events, and records
// logs, metrics, and spans for every operation.
//
// The policy is best-effort: validation failures and missing items are logged and
// leave the store unchanged, load failures reset the store to empty. Errors are
// still returned so programmatic callers can branch; the demo entry point ignores
// them.
type Service struct {
	store     *dominv.Store
	repo      dominv.SnapshotRepository
	journal   domjournal.Sink
	publisher domevent.Publisher

	log    observability.Logger
	tracer observability.Tracer
	ops    observability.Counter
	opDur  observability.Histogram
	snaps  observability.Counter
}

func NewService(
	store *dominv.Store,
	repo dominv.SnapshotRepository,
	journal domjournal.Sink,
	publisher domevent.Publisher,
	tel observability.Observability,
) *Service {
	if journal == nil {
		journal = domjournal.Nop()
	}
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		store:     store,
		repo:      repo,
		journal:   journal,
		publisher: publisher,
		log:       tel.Logger().With(observability.F("service", serviceName)),
		tracer:    tel.Tracer(),
		ops:       tel.Metrics().Counter(observability.MInventoryOps),
		opDur:     tel.Metrics().Histogram(observability.MInventoryOpDuration),
		snaps:     tel.Metrics().Counter(observability.MSnapshotOps),
	}
}

// AddStock adjusts the item's quantity by qty (signed delta; a negative qty
// decrements). On success it appends an "Added {qty} of {item}" entry to the journal
// and publishes a stock-added event. An empty item name is rejected, logged at error
// level, and leaves the store unchanged.
func (s *Service) AddStock(ctx context.Context, item string, qty int) (err error) {
	ctx, span := s.tracer.Start(ctx, spanPrefix+"AddStock",
		attribute.String("item", item),
		attribute.Int("quantity", qty),
	)
	start := time.Now()
	outcome := outcomeSuccess
	defer func() { s.observe(span, opAdd, outcome, start, err) }()

	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("item", item),
		observability.F("quantity", qty),
	)

	newQty, err := s.store.Add(item, qty)
	if err != nil {
		outcome = outcomeRejected
		logger.Error("stock_add_rejected",
			observability.F("error", err),
		)
		return err
	}

	s.journal.Append(domjournal.NewEntry(fmt.Sprintf("Added %d of %s", qty, item)))
	s.publish(ctx, dominv.NewStockAddedEvent(item, qty, newQty))

	logger.Info("stock_added",
		observability.F("new_quantity", newQty),
	)
	return nil
}

// RemoveStock decrements the item's quantity by qty; when the remaining quantity
// drops to or below zero the entry is deleted entirely. Removing an item that is not
// in stock logs a warning and is not treated as an error.
func (s *Service) RemoveStock(ctx context.Context, item string, qty int) (err error) {
	ctx, span := s.tracer.Start(ctx, spanPrefix+"RemoveStock",
		attribute.String("item", item),
		attribute.Int("quantity", qty),
	)
	start := time.Now()
	outcome := outcomeSuccess
	defer func() { s.observe(span, opRemove, outcome, start, err) }()

	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("item", item),
		observability.F("quantity", qty),
	)

	remaining, depleted, removeErr := s.store.Remove(item, qty)
	switch {
	case errors.Is(removeErr, dominv.ErrNotFound):
		outcome = outcomeMissing
		logger.Warn("stock_remove_missing")
		return nil
	case removeErr != nil:
		outcome = outcomeRejected
		logger.Error("stock_remove_rejected",
			observability.F("error", removeErr),
		)
		return removeErr
	}

	s.publish(ctx, dominv.NewStockRemovedEvent(item, qty, remaining, depleted))

	logger.Info("stock_removed",
		observability.F("remaining", remaining),
		observability.F("depleted", depleted),
	)
	return nil
}

// Quantity returns the item's current quantity, or 0 when the item is absent.
// Pure read, never fails.
func (s *Service) Quantity(_ context.Context, item string) int {
	return s.store.Quantity(item)
}

// LowStock returns the names of items whose quantity is strictly below threshold,
// in store order.
func (s *Service) LowStock(_ context.Context, threshold int) []string {
	return s.store.LowStock(threshold)
}

// Save serializes the whole store through the snapshot repository. On failure the
// in-memory store is untouched and the error is logged and returned.
func (s *Service) Save(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, spanPrefix+"Save")
	start := time.Now()
	outcome := outcomeSuccess
	defer func() { s.observe(span, opSave, outcome, start, err) }()
	defer func() {
		s.snaps.Add(1,
			observability.L("operation", "save"),
			observability.L("outcome", outcome),
		)
	}()

	snap := s.store.Snapshot()
	if err := s.repo.Save(ctx, snap); err != nil {
		outcome = outcomeError
		logctx.FromOr(ctx, s.log).Error("snapshot_save_failed",
			observability.F("items", len(snap)),
			observability.F("error", err),
		)
		return err
	}

	logctx.FromOr(ctx, s.log).Info("snapshot_saved",
		observability.F("items", len(snap)),
	)
	return nil
}

// Load replaces the store's entire contents with the persisted snapshot; it never
// merges. A missing file is the expected bootstrap case: the store resets to empty
// with a warning and no error. A corrupt or unreadable file also resets the store to
// empty, logged at error level; the error is returned for callers that care.
func (s *Service) Load(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, spanPrefix+"Load")
	start := time.Now()
	outcome := outcomeSuccess
	defer func() { s.observe(span, opLoad, outcome, start, err) }()
	defer func() {
		s.snaps.Add(1,
			observability.L("operation", "load"),
			observability.L("outcome", outcome),
		)
	}()

	snap, loadErr := s.repo.Load(ctx)
	switch {
	case errors.Is(loadErr, dominv.ErrSnapshotNotFound):
		outcome = outcomeReset
		s.store.Replace(nil)
		logctx.FromOr(ctx, s.log).Warn("snapshot_missing_starting_empty",
			observability.F("error", loadErr),
		)
		return nil
	case loadErr != nil:
		outcome = outcomeError
		s.store.Replace(nil)
		logctx.FromOr(ctx, s.log).Error("snapshot_load_failed_starting_empty",
			observability.F("error", loadErr),
		)
		return loadErr
	}

	s.store.Replace(snap)
	s.publish(ctx, dominv.NewSnapshotLoadedEvent(len(snap)))

	logctx.FromOr(ctx, s.log).Info("snapshot_loaded",
		observability.F("items", len(snap)),
	)
	return nil
}

// Report writes a human-readable listing of all items and quantities, in store
// order, to w.
func (s *Service) Report(ctx context.Context, w io.Writer) (err error) {
	_, span := s.tracer.Start(ctx, spanPrefix+"Report")
	start := time.Now()
	outcome := outcomeSuccess
	defer func() { s.observe(span, opReport, outcome, start, err) }()

	if _, err = fmt.Fprintln(w, "Items Report"); err != nil {
		outcome = outcomeError
		return err
	}
	for _, it := range s.store.Snapshot() {
		if _, err = fmt.Fprintf(w, "%s -> %d\n", it.Name, it.Quantity); err != nil {
			outcome = outcomeError
			return err
		}
	}
	return nil
}

func (s *Service) observe(span trace.Span, op, outcome string, start time.Time, err error) {
	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		} else {
			span.SetStatus(codes.Ok, outcome)
		}
		span.End()
	}
	s.ops.Add(1,
		observability.L("operation", op),
		observability.L("outcome", outcome),
	)
	s.opDur.Observe(time.Since(start).Seconds(),
		observability.L("operation", op),
	)
}

func (s *Service) publish(ctx context.Context, e domevent.Event) {
	if s.publisher == nil || e == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		logctx.FromOr(ctx, s.log).Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err),
		)
	}
}
