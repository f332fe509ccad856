package inventory

import (
	"errors"
	"strings"
	"sync"
)

var (
	ErrInvalidItem      = errors.New("inventory: item name must be non-empty")
	ErrNotFound         = errors.New("inventory: item not in stock")
	ErrSnapshotNotFound = errors.New("inventory: snapshot file not found")
	ErrSnapshotCorrupt  = errors.New("inventory: snapshot file is not valid JSON")
)

// DefaultLowStockThreshold is the quantity below which an item counts as low stock.
const DefaultLowStockThreshold = 5

// Store maps item names to quantities while preserving insertion order: reports,
// low-stock scans and persisted snapshots all iterate in the order items first
// appeared, and a removed-then-re-added item moves to the end.
//
// Entries are deleted only by Remove (when the remaining quantity drops to or below
// zero). Add applies a signed delta and keeps whatever quantity results, including
// non-positive ones; this mirrors the permissive add semantics the tracker has always
// had, where Add(-n) is a deliberate signed-delta adjustment rather than a removal.
type Store struct {
	mu         sync.RWMutex
	quantities map[string]int
	order      []string
}

func NewStore() *Store {
	return &Store{
		quantities: make(map[string]int),
	}
}

// Add adjusts the item's quantity by qty, creating the entry when absent.
// It returns the resulting quantity.
func (s *Store) Add(item string, qty int) (int, error) {
	if strings.TrimSpace(item) == "" {
		return 0, ErrInvalidItem
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quantities[item]; !ok {
		s.order = append(s.order, item)
	}
	s.quantities[item] += qty
	return s.quantities[item], nil
}

// Remove decrements the item's quantity by qty. When the remaining quantity is zero
// or negative the entry is deleted entirely, so the store never reports it again.
// It returns the remaining quantity (0 when deleted) and whether the item was
// depleted. Removing an absent item returns ErrNotFound and changes nothing.
func (s *Store) Remove(item string, qty int) (remaining int, depleted bool, err error) {
	if strings.TrimSpace(item) == "" {
		return 0, false, ErrInvalidItem
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.quantities[item]
	if !ok {
		return 0, false, ErrNotFound
	}

	remaining = current - qty
	if remaining <= 0 {
		s.delete(item)
		return 0, true, nil
	}
	s.quantities[item] = remaining
	return remaining, false, nil
}

// Quantity returns the item's current quantity, or 0 when absent.
func (s *Store) Quantity(item string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quantities[item]
}

// LowStock returns the names of items whose quantity is strictly below threshold,
// in insertion order.
func (s *Store) LowStock(threshold int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var low []string
	for _, name := range s.order {
		if s.quantities[name] < threshold {
			low = append(low, name)
		}
	}
	return low
}

// Snapshot returns an ordered copy of all entries.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(Snapshot, 0, len(s.order))
	for _, name := range s.order {
		snap = append(snap, Item{Name: name, Quantity: s.quantities[name]})
	}
	return snap
}

// Replace swaps the store's entire contents for the given snapshot. It never merges;
// passing a nil or empty snapshot resets the store to empty.
func (s *Store) Replace(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quantities = make(map[string]int, len(snap))
	s.order = s.order[:0]
	for _, it := range snap {
		if _, ok := s.quantities[it.Name]; !ok {
			s.order = append(s.order, it.Name)
		}
		s.quantities[it.Name] = it.Quantity
	}
}

// Len returns the number of entries currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quantities)
}

// delete removes the entry and its order slot; callers must hold the write lock.
func (s *Store) delete(item string) {
	delete(s.quantities, item)
	for i, name := range s.order {
		if name == item {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
