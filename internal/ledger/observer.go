package ledger

import (
	"context"
	"time"

	"expensetracker/internal/core"
)

const (
	EventCreated   EventKind = "expense.created"
	EventUpdated   EventKind = "expense.updated"
	EventDeleted   EventKind = "expense.deleted"
	EventBudgetSet EventKind = "budget.set"
)

type (
	EventKind string

	// Event describes a committed mutation together with the budget status
	// evaluated right after it.
	Event struct {
		ID           string
		Kind         EventKind
		OccurredAt   time.Time
		Expense      *core.Expense // created, updated or deleted record
		Previous     *core.Expense // record before an update
		Status       core.BudgetStatus
		PreviousTier core.Tier
	}

	// Observer is notified after every committed mutation. Errors are logged
	// by the ledger and never undo the mutation.
	Observer interface {
		Notify(ctx context.Context, ev Event) error
	}

	// ObserverFunc adapts a function to Observer.
	ObserverFunc func(ctx context.Context, ev Event) error
)

func (f ObserverFunc) Notify(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// TierChanged reports whether the mutation moved the budget to another tier.
func (e Event) TierChanged() bool {
	return e.Status.Tier != e.PreviousTier
}

// Escalated reports whether the budget moved into a more severe alerting tier.
func (e Event) Escalated() bool {
	return e.Status.Alerting() && e.Status.Tier.Rank() > e.PreviousTier.Rank()
}

func (k EventKind) String() string {
	return string(k)
}
