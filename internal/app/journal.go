package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mcintyre94/swapsies/internal/events"
	"github.com/mcintyre94/swapsies/internal/logger"
)

// journalFlushInterval bounds how long a completed preview can sit in the
// CSV buffer before hitting disk.
const journalFlushInterval = 5 * time.Second

var journalHeader = []string{
	"timestamp", "input_mint", "output_mint", "amount_in", "total_cost_usd", "severity",
}

// Journal appends one CSV row per completed preview, giving the user an
// auditable record of every quote they looked at.
type Journal struct {
	writer *logger.SafeCSVWriter
	sub    events.Subscription
	logger *zap.Logger
}

// NewJournal opens (or reopens) the journal file and subscribes to completed
// previews on the bus.
func NewJournal(path string, bus *events.Bus, log *zap.Logger) (*Journal, error) {
	log = log.Named("journal")

	writer, err := logger.NewSafeCSVWriter(path, journalHeader, journalFlushInterval, log)
	if err != nil {
		return nil, err
	}

	j := &Journal{writer: writer, logger: log}
	j.sub = bus.SubscribeFunc(events.PreviewReady, j.record)

	log.Info("Preview journal open", zap.String("file", path))
	return j, nil
}

func (j *Journal) record(_ context.Context, event events.Event) error {
	ev, ok := event.(events.PreviewReadyEvent)
	if !ok {
		return nil
	}

	return j.writer.WriteRecord([]string{
		ev.Timestamp().UTC().Format(time.RFC3339),
		ev.InputMint,
		ev.OutputMint,
		ev.AmountIn.String(),
		ev.TotalCostUSD.StringFixed(6),
		ev.Severity,
	})
}

// Close unsubscribes and flushes the journal.
func (j *Journal) Close() error {
	j.sub.Unsubscribe()
	return j.writer.Close()
}
