package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

// LedgerEventMessage is the wire form of a committed ledger mutation.
// It carries enough of the budget to recompute the status on the consumer side.
type LedgerEventMessage struct {
	ID           string        `json:"id"`
	Kind         string        `json:"kind"`
	OccurredAt   time.Time     `json:"occurred_at"`
	Expense      *core.Expense `json:"expense,omitempty"`
	LimitCents   int64         `json:"limit_cents"`
	SpentCents   int64         `json:"spent_cents"`
	Tier         string        `json:"tier"`
	PreviousTier string        `json:"previous_tier"`
	Escalated    bool          `json:"escalated"`
}

// NewLedgerEventMessage converts a ledger event into a message
func NewLedgerEventMessage(ev ledger.Event) *LedgerEventMessage {
	msg := &LedgerEventMessage{
		ID:           ev.ID,
		Kind:         ev.Kind.String(),
		OccurredAt:   ev.OccurredAt.UTC(),
		LimitCents:   ev.Status.Limit.Cents,
		SpentCents:   ev.Status.Spent.Cents,
		Tier:         ev.Status.Tier.String(),
		PreviousTier: ev.PreviousTier.String(),
		Escalated:    ev.Escalated(),
	}
	if ev.Expense != nil {
		rec := *ev.Expense
		msg.Expense = &rec
	}
	return msg
}

// Status rebuilds the budget status the event was published with.
func (m *LedgerEventMessage) Status() core.BudgetStatus {
	return core.NewBudgetStatus(core.Money{Cents: m.SpentCents}, core.Money{Cents: m.LimitCents})
}

func (m *LedgerEventMessage) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: message without id", core.ErrValidation)
	}
	if m.Kind == "" {
		return fmt.Errorf("%w: message %s without kind", core.ErrValidation, m.ID)
	}
	if _, ok := core.ParseTier(m.Tier); !ok {
		return fmt.Errorf("%w: message %s has unknown tier %q", core.ErrValidation, m.ID, m.Tier)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON decodes and validates a message
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
