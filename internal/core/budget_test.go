package core

import (
	"strings"
	"testing"
)

func TestClassifyTier(t *testing.T) {
	limit := Money{Cents: 100000}
	cases := []struct {
		spent int64
		limit Money
		want  Tier
	}{
		{50000, limit, TierNormal},
		{74999, limit, TierNormal},
		{75000, limit, TierWarning},
		{89999, limit, TierWarning},
		{90000, limit, TierHigh},
		{99999, limit, TierHigh},
		{100000, limit, TierExceeded},
		{250000, limit, TierExceeded},
		{0, limit, TierNormal},
		{999999, Money{}, TierNone},
		{0, Money{}, TierNone},
	}
	for _, tc := range cases {
		if got := ClassifyTier(Money{Cents: tc.spent}, tc.limit); got != tc.want {
			t.Fatalf("spent=%d limit=%d: expected %s, got %s", tc.spent, tc.limit.Cents, tc.want, got)
		}
	}
}

func TestNewBudgetStatus(t *testing.T) {
	s := NewBudgetStatus(Money{Cents: 120000}, Money{Cents: 100000})
	if s.Remaining.Cents != -20000 {
		t.Fatalf("expected negative remaining, got %d", s.Remaining.Cents)
	}
	if s.Percentage != 120 || s.ProgressPercent() != 100 {
		t.Fatalf("unexpected percentage %v / %v", s.Percentage, s.ProgressPercent())
	}
	if s.Tier != TierExceeded || !s.Alerting() || !s.Configured() {
		t.Fatalf("unexpected status %+v", s)
	}

	none := NewBudgetStatus(Money{Cents: 5000}, Money{})
	if none.Percentage != 0 || none.Tier != TierNone || none.Configured() || none.Alerting() {
		t.Fatalf("unexpected status without budget %+v", none)
	}
	if none.Remaining.Cents != -5000 {
		t.Fatalf("expected remaining -5000, got %d", none.Remaining.Cents)
	}
}

func TestWarningMessage(t *testing.T) {
	limit := Money{Cents: 100000}
	cases := []struct {
		spent  int64
		prefix string
	}{
		{50000, ""},
		{75000, "Heads up! You've used 75.0%"},
		{92000, "Warning! You've used 92.0% of your monthly budget. Only ₹80.00 remaining."},
		{100000, "You've exceeded your monthly budget! You've spent ₹1000.00 out of ₹1000.00."},
	}
	for _, tc := range cases {
		msg := NewBudgetStatus(Money{Cents: tc.spent}, limit).WarningMessage()
		if tc.prefix == "" {
			if msg != "" {
				t.Fatalf("spent=%d: expected no message, got %q", tc.spent, msg)
			}
			continue
		}
		if !strings.HasPrefix(msg, tc.prefix) {
			t.Fatalf("spent=%d: expected prefix %q, got %q", tc.spent, tc.prefix, msg)
		}
	}
}

func TestClassifyRemaining(t *testing.T) {
	limit := Money{Cents: 100000}
	if got := ClassifyRemaining(Money{Cents: -1}, limit); got != RemainingOverdrawn {
		t.Fatalf("expected overdrawn, got %s", got)
	}
	if got := ClassifyRemaining(Money{Cents: 9999}, limit); got != RemainingLow {
		t.Fatalf("expected low, got %s", got)
	}
	if got := ClassifyRemaining(Money{Cents: 10000}, limit); got != RemainingOK {
		t.Fatalf("expected ok, got %s", got)
	}
}

func TestTierRank(t *testing.T) {
	order := []Tier{TierNone, TierNormal, TierWarning, TierHigh, TierExceeded}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Fatalf("%s must outrank %s", order[i], order[i-1])
		}
	}
}

func TestSortedAmounts(t *testing.T) {
	out := SortedAmounts(map[Category]Money{
		Other: {Cents: 1},
		Food:  {Cents: 2},
		"zzz": {Cents: 3},
	})
	if len(out) != 3 || out[0].Category != Food || out[1].Category != Other || out[2].Category != "zzz" {
		t.Fatalf("unexpected order: %+v", out)
	}
}
