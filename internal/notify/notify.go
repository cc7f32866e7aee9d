// Package notify holds ledger observers that surface budget alerts.
package notify

import (
	"context"
	"fmt"

	"expensetracker/internal/amqp"
	"expensetracker/internal/ledger"
	applog "expensetracker/internal/log"
)

// LogObserver writes the budget warning after every mutation that leaves the
// month in an alerting tier, and records tier changes.
type LogObserver struct {
	log *applog.Logger
}

func NewLogObserver(logger *applog.Logger) *LogObserver {
	return &LogObserver{log: logger.WithComponent(applog.ComponentNotify)}
}

func (o *LogObserver) Notify(ctx context.Context, ev ledger.Event) error {
	status := ev.Status
	if ev.TierChanged() {
		o.log.InfoContext(ctx, "Budget tier changed",
			applog.FieldEventID, ev.ID,
			applog.FieldTier, status.Tier.String(),
			applog.FieldPrevTier, ev.PreviousTier.String(),
			applog.FieldPercentage, status.Percentage)
	}
	if ev.Kind == ledger.EventDeleted || !status.Alerting() {
		return nil
	}
	o.log.WarnContext(ctx, status.WarningMessage(),
		applog.FieldEventID, ev.ID,
		applog.FieldOperation, ev.Kind.String(),
		applog.FieldBudgetCents, status.Limit.Cents,
		applog.FieldSpentCents, status.Spent.Cents,
		applog.FieldTier, status.Tier.String())
	return nil
}

// Publisher sends ledger events to a broker.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error
}

// AMQPObserver forwards every ledger event to a Publisher.
type AMQPObserver struct {
	pub Publisher
	log *applog.Logger
}

func NewAMQPObserver(pub Publisher, logger *applog.Logger) *AMQPObserver {
	return &AMQPObserver{pub: pub, log: logger.WithComponent(applog.ComponentNotify)}
}

func (o *AMQPObserver) Notify(ctx context.Context, ev ledger.Event) error {
	msg := amqp.NewLedgerEventMessage(ev)
	if err := o.pub.PublishLedgerEvent(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event %s: %w", msg.Kind, msg.ID, err)
	}
	o.log.DebugContext(ctx, "Ledger event published",
		applog.FieldEventID, msg.ID,
		applog.FieldOperation, applog.OpPublish)
	return nil
}
