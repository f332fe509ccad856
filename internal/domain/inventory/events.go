package inventory

import "time"

// StockAddedEvent is emitted after a signed-delta adjustment lands in the store.
type StockAddedEvent struct {
	Item        string
	Quantity    int
	NewQuantity int
	OccurredAt  time.Time
}

func (StockAddedEvent) EventName() string { return "inventory.stock_added" }

func NewStockAddedEvent(item string, quantity, newQuantity int) StockAddedEvent {
	return StockAddedEvent{
		Item:        item,
		Quantity:    quantity,
		NewQuantity: newQuantity,
		OccurredAt:  time.Now().UTC(),
	}
}

// StockRemovedEvent is emitted after a removal; Depleted reports whether the entry
// was deleted because its remaining quantity dropped to or below zero.
type StockRemovedEvent struct {
	Item       string
	Quantity   int
	Remaining  int
	Depleted   bool
	OccurredAt time.Time
}

func (StockRemovedEvent) EventName() string { return "inventory.stock_removed" }

func NewStockRemovedEvent(item string, quantity, remaining int, depleted bool) StockRemovedEvent {
	return StockRemovedEvent{
		Item:       item,
		Quantity:   quantity,
		Remaining:  remaining,
		Depleted:   depleted,
		OccurredAt: time.Now().UTC(),
	}
}

// SnapshotLoadedEvent is emitted when the store is wholesale-replaced from disk.
type SnapshotLoadedEvent struct {
	Items      int
	OccurredAt time.Time
}

func (SnapshotLoadedEvent) EventName() string { return "inventory.snapshot_loaded" }

func NewSnapshotLoadedEvent(items int) SnapshotLoadedEvent {
	return SnapshotLoadedEvent{
		Items:      items,
		OccurredAt: time.Now().UTC(),
	}
}
