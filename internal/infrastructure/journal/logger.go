package journal

import (
	domain "github.com/minhngo-dev/stock-tally/internal/domain/journal"
	"github.com/minhngo-dev/stock-tally/internal/observability"
)

// LoggerSink forwards journal entries to a structured logger at info level.
type LoggerSink struct {
	log observability.Logger
}

func NewLoggerSink(logger observability.Logger) *LoggerSink {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &LoggerSink{log: logger.With(observability.F("component", "journal"))}
}

func (s *LoggerSink) Append(e domain.Entry) {
	s.log.Info("journal_entry",
		observability.F("entry_id", e.ID),
		observability.F("at", e.At),
		observability.F("message", e.Message),
	)
}
