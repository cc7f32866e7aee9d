package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	TierNone     Tier = "none"
	TierNormal   Tier = "normal"
	TierWarning  Tier = "warning"
	TierHigh     Tier = "high"
	TierExceeded Tier = "exceeded"
)

// Inclusive lower bounds, in percent of the monthly limit.
const (
	WarningThreshold  = 75
	HighThreshold     = 90
	ExceededThreshold = 100
)

type (
	// Tier classifies how much of the monthly budget has been consumed.
	Tier string

	// BudgetStatus compares the spending of one calendar month against the limit.
	BudgetStatus struct {
		Limit      Money
		Spent      Money
		Remaining  Money
		Percentage float64
		Tier       Tier
	}
)

// ClassifyTier compares exact decimals so that 750 of 1000 is warning, not 74.99...%.
func ClassifyTier(spent, limit Money) Tier {
	if limit.Cents <= 0 {
		return TierNone
	}
	scaled := spent.Decimal().Mul(hundred)
	reached := func(threshold int64) bool {
		return scaled.GreaterThanOrEqual(limit.Decimal().Mul(decimal.NewFromInt(threshold)))
	}
	switch {
	case reached(ExceededThreshold):
		return TierExceeded
	case reached(HighThreshold):
		return TierHigh
	case reached(WarningThreshold):
		return TierWarning
	default:
		return TierNormal
	}
}

// NewBudgetStatus derives the full status from spent and the configured limit.
func NewBudgetStatus(spent, limit Money) BudgetStatus {
	status := BudgetStatus{
		Limit:     limit,
		Spent:     spent,
		Remaining: limit.Sub(spent),
		Tier:      ClassifyTier(spent, limit),
	}
	if limit.Cents > 0 {
		status.Percentage = spent.Decimal().Div(limit.Decimal()).Mul(hundred).InexactFloat64()
	}
	return status
}

// Configured reports whether a monthly budget is set.
func (s BudgetStatus) Configured() bool {
	return s.Tier != TierNone
}

// Alerting reports whether the tier should surface a warning to the user.
func (s BudgetStatus) Alerting() bool {
	switch s.Tier {
	case TierWarning, TierHigh, TierExceeded:
		return true
	default:
		return false
	}
}

// ProgressPercent is the percentage capped at 100, for progress bars.
func (s BudgetStatus) ProgressPercent() float64 {
	if s.Percentage > 100 {
		return 100
	}
	return s.Percentage
}

// WarningMessage is the user-facing alert text for the tier, or "".
func (s BudgetStatus) WarningMessage() string {
	switch s.Tier {
	case TierExceeded:
		return fmt.Sprintf("You've exceeded your monthly budget! You've spent ₹%s out of ₹%s.",
			s.Spent.Fixed(), s.Limit.Fixed())
	case TierHigh:
		return fmt.Sprintf("Warning! You've used %.1f%% of your monthly budget. Only ₹%s remaining.",
			s.Percentage, s.Remaining.Fixed())
	case TierWarning:
		return fmt.Sprintf("Heads up! You've used %.1f%% of your monthly budget. Consider tracking your expenses more carefully.",
			s.Percentage)
	default:
		return ""
	}
}

// ParseTier maps a tier name back to its Tier.
func ParseTier(s string) (Tier, bool) {
	switch t := Tier(s); t {
	case TierNone, TierNormal, TierWarning, TierHigh, TierExceeded:
		return t, true
	default:
		return "", false
	}
}

func (t Tier) String() string {
	return string(t)
}

// Rank orders tiers by severity; TierNone ranks lowest.
func (t Tier) Rank() int {
	switch t {
	case TierNormal:
		return 1
	case TierWarning:
		return 2
	case TierHigh:
		return 3
	case TierExceeded:
		return 4
	default:
		return 0
	}
}
