package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

type recordingSink struct {
	alerts []Alert
	err    error
}

func (s *recordingSink) Deliver(_ context.Context, a Alert) error {
	if s.err != nil {
		return s.err
	}
	s.alerts = append(s.alerts, a)
	return nil
}

func message(id string, spent, limit int64, prev string, escalated bool) *amqp.LedgerEventMessage {
	status := core.NewBudgetStatus(core.Money{Cents: spent}, core.Money{Cents: limit})
	return &amqp.LedgerEventMessage{
		ID:           id,
		Kind:         "expense.created",
		OccurredAt:   time.Date(2024, 1, 18, 12, 0, 0, 0, time.UTC),
		LimitCents:   limit,
		SpentCents:   spent,
		Tier:         status.Tier.String(),
		PreviousTier: prev,
		Escalated:    escalated,
	}
}

func TestAlertWorker_HandleLedgerEvent(t *testing.T) {
	tests := []struct {
		name      string
		msg       *amqp.LedgerEventMessage
		wantAlert bool
		wantTier  core.Tier
		wantText  string
	}{
		{"normal spending", message("a", 10000, 100000, "normal", false), false, "", ""},
		{"warning", message("b", 75000, 100000, "normal", true), true, core.TierWarning, "Heads up!"},
		{"high", message("c", 90000, 100000, "warning", true), true, core.TierHigh, "Only ₹100.00 remaining"},
		{"exceeded", message("d", 120000, 100000, "high", true), true, core.TierExceeded, "₹1200.00 out of ₹1000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			w := NewAlertWorker(applog.Discard(), sink, 0, 0)

			if err := w.HandleLedgerEvent(context.Background(), tt.msg); err != nil {
				t.Fatalf("HandleLedgerEvent() error = %v", err)
			}

			if !tt.wantAlert {
				if len(sink.alerts) != 0 {
					t.Fatalf("expected no alert, got %+v", sink.alerts)
				}
				return
			}
			if len(sink.alerts) != 1 {
				t.Fatalf("expected one alert, got %d", len(sink.alerts))
			}
			got := sink.alerts[0]
			if got.Tier != tt.wantTier {
				t.Errorf("Tier = %v, want %v", got.Tier, tt.wantTier)
			}
			if !strings.Contains(got.Message, tt.wantText) {
				t.Errorf("Message = %q, want it to contain %q", got.Message, tt.wantText)
			}
			if got.EventID != tt.msg.ID {
				t.Errorf("EventID = %q, want %q", got.EventID, tt.msg.ID)
			}
		})
	}
}

func TestAlertWorker_Deduplicates(t *testing.T) {
	sink := &recordingSink{}
	w := NewAlertWorker(applog.Discard(), sink, 16, time.Hour)
	msg := message("dup", 95000, 100000, "normal", true)

	for i := 0; i < 3; i++ {
		if err := w.HandleLedgerEvent(context.Background(), msg); err != nil {
			t.Fatalf("HandleLedgerEvent() error = %v", err)
		}
	}

	if len(sink.alerts) != 1 {
		t.Errorf("alerts delivered = %d, want 1", len(sink.alerts))
	}
	stats := w.Stats()
	if stats.Processed != 1 || stats.Alerts != 1 || stats.Duplicates != 2 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestAlertWorker_SinkFailureIsRetryable(t *testing.T) {
	sink := &recordingSink{err: errors.New("sheet unavailable")}
	w := NewAlertWorker(applog.Discard(), sink, 16, time.Hour)
	msg := message("retry", 95000, 100000, "normal", true)

	err := w.HandleLedgerEvent(context.Background(), msg)
	if !errors.Is(err, sink.err) {
		t.Fatalf("HandleLedgerEvent() error = %v, want sink error", err)
	}

	// the redelivery goes through once the sink recovers
	sink.err = nil
	if err := w.HandleLedgerEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleLedgerEvent() retry error = %v", err)
	}
	if len(sink.alerts) != 1 {
		t.Errorf("alerts delivered = %d, want 1", len(sink.alerts))
	}
}

func TestAlertWorker_NilSink(t *testing.T) {
	w := NewAlertWorker(applog.Discard(), nil, 0, 0)
	if err := w.HandleLedgerEvent(context.Background(), message("x", 95000, 100000, "normal", true)); err != nil {
		t.Fatalf("HandleLedgerEvent() error = %v", err)
	}
	if got := w.Stats().Alerts; got != 1 {
		t.Errorf("Alerts = %d, want 1", got)
	}
}

func TestAlertWorker_RunJanitorStops(t *testing.T) {
	w := NewAlertWorker(applog.Discard(), nil, 0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.RunJanitor(ctx, time.Millisecond) }()

	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("RunJanitor() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RunJanitor did not stop")
	}
}
