package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

const (
	defaultDedupeSize = 1024
	defaultDedupeTTL  = time.Hour
)

// Alert is a budget escalation ready to be delivered to a user-facing sink.
type Alert struct {
	EventID    string
	Kind       string
	Tier       core.Tier
	Message    string
	Status     core.BudgetStatus
	OccurredAt time.Time
	Expense    *core.Expense
}

// AlertSink receives escalations. A failing sink makes the event retryable.
type AlertSink interface {
	Deliver(ctx context.Context, alert Alert) error
}

// Stats counts what the worker has seen since start.
type Stats struct {
	Processed  int64
	Alerts     int64
	Duplicates int64
}

// AlertWorker turns consumed ledger events into budget alerts. Events are
// deduplicated by id so broker redeliveries do not alert twice.
type AlertWorker struct {
	log  *applog.Logger
	sink AlertSink
	seen *cache.LRUCache[string, struct{}]

	processed  atomic.Int64
	alerts     atomic.Int64
	duplicates atomic.Int64
}

// NewAlertWorker creates a worker. sink may be nil, in which case alerts are only logged.
func NewAlertWorker(logger *applog.Logger, sink AlertSink, dedupeSize int, dedupeTTL time.Duration) *AlertWorker {
	if dedupeSize <= 0 {
		dedupeSize = defaultDedupeSize
	}
	if dedupeTTL <= 0 {
		dedupeTTL = defaultDedupeTTL
	}
	return &AlertWorker{
		log:  logger.WithComponent(applog.ComponentWorker),
		sink: sink,
		seen: cache.NewLRUCache[string, struct{}](dedupeSize, dedupeTTL),
	}
}

// HandleLedgerEvent processes a single ledger event message from AMQP
func (w *AlertWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if _, dup := w.seen.Get(msg.ID); dup {
		w.duplicates.Add(1)
		w.log.DebugContext(ctx, "Skipping duplicate event", applog.FieldEventID, msg.ID)
		return nil
	}

	if !msg.Escalated {
		w.seen.Set(msg.ID, struct{}{})
		w.processed.Add(1)
		return nil
	}

	status := msg.Status()
	alert := Alert{
		EventID:    msg.ID,
		Kind:       msg.Kind,
		Tier:       status.Tier,
		Message:    status.WarningMessage(),
		Status:     status,
		OccurredAt: msg.OccurredAt,
		Expense:    msg.Expense,
	}

	w.log.WarnContext(ctx, "Budget alert",
		applog.FieldEventID, msg.ID,
		applog.FieldOperation, msg.Kind,
		applog.FieldTier, status.Tier.String(),
		applog.FieldPrevTier, msg.PreviousTier,
		applog.FieldPercentage, status.Percentage,
		"message", alert.Message)

	if w.sink != nil {
		if err := w.sink.Deliver(ctx, alert); err != nil {
			return fmt.Errorf("deliver alert %s: %w", msg.ID, err)
		}
	}

	w.seen.Set(msg.ID, struct{}{})
	w.processed.Add(1)
	w.alerts.Add(1)
	return nil
}

// RunJanitor drops expired dedupe entries every interval until ctx is done.
func (w *AlertWorker) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := w.seen.CleanExpired(); n > 0 {
				w.log.DebugContext(ctx, "Expired dedupe entries removed", applog.FieldCount, n)
			}
		}
	}
}

func (w *AlertWorker) Stats() Stats {
	return Stats{
		Processed:  w.processed.Load(),
		Alerts:     w.alerts.Load(),
		Duplicates: w.duplicates.Load(),
	}
}
