package core

import "sort"

const (
	RemainingOK        RemainingLevel = "ok"
	RemainingLow       RemainingLevel = "low"
	RemainingOverdrawn RemainingLevel = "overdrawn"
)

type (
	// RemainingLevel colours the remaining-budget card.
	RemainingLevel string

	// Filter selects expenses. Zero fields are wildcards.
	Filter struct {
		Category  Category
		StartDate string
		EndDate   string
	}

	// CategoryAmount represents an amount aggregated by category.
	CategoryAmount struct {
		Category Category
		Amount   Money
	}

	// Dashboard is the compact overview for a reference month.
	Dashboard struct {
		MonthlyTotal   Money
		Remaining      Money
		TotalExpenses  int
		Budget         BudgetStatus
		RemainingLevel RemainingLevel
	}
)

// Matches reports whether e satisfies every present criterion. Dates compare
// lexicographically, which is safe for the fixed ISO form.
func (f Filter) Matches(e Expense) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	date := e.Date.String()
	if f.StartDate != "" && date < f.StartDate {
		return false
	}
	if f.EndDate != "" && date > f.EndDate {
		return false
	}
	return true
}

// IsEmpty reports whether the filter has no criteria.
func (f Filter) IsEmpty() bool {
	return f.Category == "" && f.StartDate == "" && f.EndDate == ""
}

// ClassifyRemaining flags overdrawn budgets and those with less than 10% left.
func ClassifyRemaining(remaining, limit Money) RemainingLevel {
	switch {
	case remaining.Cents < 0:
		return RemainingOverdrawn
	case remaining.Cents*10 < limit.Cents:
		return RemainingLow
	default:
		return RemainingOK
	}
}

// SortedAmounts flattens a category summary into display order.
func SortedAmounts(summary map[Category]Money) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(summary))
	for _, info := range categoryTable {
		if amt, ok := summary[info.Key]; ok {
			out = append(out, CategoryAmount{Category: info.Key, Amount: amt})
		}
	}
	// unknown keys only appear in hand-edited storage
	var extra []CategoryAmount
	for c, amt := range summary {
		if !c.Valid() {
			extra = append(extra, CategoryAmount{Category: c, Amount: amt})
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Category < extra[j].Category })
	return append(out, extra...)
}
