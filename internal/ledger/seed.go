package ledger

import (
	"context"
	"fmt"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// SampleBudget is the monthly limit installed together with the sample data.
var SampleBudget = core.Money{Cents: 1500000}

type sample struct {
	daysAgo     int
	cents       int64
	category    core.Category
	description string
}

var samples = []sample{
	{1, 12000, core.Food, "Lunch at campus cafeteria"},
	{2, 4500, core.Transport, "Auto fare"},
	{3, 35000, core.Entertainment, "Movie tickets"},
	{4, 8000, core.Stationery, "Notebook and pens"},
}

// seed installs the demonstration records and budget for a first run.
func (l *Ledger) seed(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	today := core.DateOf(now)
	records := make([]core.Expense, 0, len(samples))
	for _, s := range samples {
		date := today.AddDays(-s.daysAgo)
		records = append(records, core.Expense{
			ID:          l.ids.Next(now),
			Amount:      core.Money{Cents: s.cents},
			Category:    s.category,
			Date:        date,
			Description: s.description,
			Timestamp:   date.UnixMilli(),
		})
	}

	// A non-empty expense list marks the seed as done, so it is written last.
	prevBudget, hadBudget, err := l.store.Get(ctx, storage.KeyBudget)
	if err != nil {
		err = fmt.Errorf("%w: read budget: %w", core.ErrStorage, err)
		l.logStorageFailure(ctx, applog.OpSeed, err)
		return err
	}
	if err := l.store.Set(ctx, storage.KeyBudget, SampleBudget.String()); err != nil {
		err = fmt.Errorf("%w: save budget: %w", core.ErrStorage, err)
		l.logStorageFailure(ctx, applog.OpSeed, err)
		return err
	}
	if err := saveExpenses(ctx, l.store, records); err != nil {
		l.logStorageFailure(ctx, applog.OpSeed, err)
		if rbErr := l.restoreBudget(ctx, prevBudget, hadBudget); rbErr != nil {
			l.logStorageFailure(ctx, applog.OpSeed, rbErr)
		}
		return err
	}
	l.records = records
	l.budget = SampleBudget
	l.totals.Purge()

	l.log.InfoContext(ctx, "Seeded sample data",
		applog.FieldOperation, applog.OpSeed,
		applog.FieldCount, len(records),
		applog.FieldBudgetCents, SampleBudget.Cents)
	return nil
}

func (l *Ledger) restoreBudget(ctx context.Context, raw string, ok bool) error {
	var err error
	if ok {
		err = l.store.Set(ctx, storage.KeyBudget, raw)
	} else {
		err = l.store.Delete(ctx, storage.KeyBudget)
	}
	if err != nil {
		return fmt.Errorf("%w: restore budget: %w", core.ErrStorage, err)
	}
	return nil
}
