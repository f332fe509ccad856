package journal

import (
	"sync"

	domain "github.com/minhngo-dev/stock-tally/internal/domain/journal"
)

// Memory is an in-memory journal sink. Entries can be read back in append order,
// which is what the demo (and tests) use as the caller-supplied action log.
type Memory struct {
	mu      sync.Mutex
	entries []domain.Entry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(e domain.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
}

// Entries returns a copy of everything appended so far.
func (m *Memory) Entries() []domain.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Entry(nil), m.entries...)
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
