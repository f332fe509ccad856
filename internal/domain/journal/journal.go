package journal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is a single human-readable action-log line.
type Entry struct {
	ID      string
	At      time.Time
	Message string
}

// NewEntry stamps the message with an ID and the current time.
func NewEntry(message string) Entry {
	return Entry{
		ID:      uuid.NewString(),
		At:      time.Now(),
		Message: message,
	}
}

// String renders the entry the way it appears in the action log:
// "2026-01-02T15:04:05: Added 3 of apple".
func (e Entry) String() string {
	return fmt.Sprintf("%s: %s", e.At.Format("2006-01-02T15:04:05"), e.Message)
}

// Sink collects action-log entries. Implementations decide whether entries are kept
// in memory, forwarded to a logger, or dropped.
type Sink interface {
	Append(e Entry)
}

type nopSink struct{}

func (nopSink) Append(Entry) {}

// Nop returns a sink that discards every entry.
func Nop() Sink { return nopSink{} }
