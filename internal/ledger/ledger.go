// Package ledger owns the expense records and the monthly budget. Every
// mutation is validated, persisted to the key-value store and only then
// applied in memory, so a failed call never leaves partial state behind.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/storage"
)

const (
	defaultCacheSize = 24
	monthKeyLayout   = "2006-01"
)

// Options configures a Ledger. The zero value seeds nothing and uses the system clock.
type Options struct {
	// Seed populates an empty ledger with sample data on Open.
	Seed      bool
	Clock     Clock
	Logger    *applog.Logger
	Observers []Observer
	// CacheSize bounds the number of memoized monthly totals.
	CacheSize int
	CacheTTL  time.Duration
}

type Ledger struct {
	mu        sync.Mutex
	store     storage.KeyValueStore
	records   []core.Expense
	budget    core.Money
	clock     Clock
	ids       idGenerator
	log       *applog.Logger
	observers []Observer
	totals    *cache.LRUCache[string, core.Money]
}

// Open loads the ledger from store, seeding sample data when the persisted
// expense list is empty and opts.Seed is set.
func Open(ctx context.Context, store storage.KeyValueStore, opts Options) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("ledger: nil store")
	}
	l := &Ledger{
		store:     store,
		clock:     opts.Clock,
		log:       opts.Logger,
		observers: append([]Observer(nil), opts.Observers...),
	}
	if l.clock == nil {
		l.clock = SystemClock{}
	}
	if l.log == nil {
		l.log = applog.New(applog.Config{Handler: slog.Default().Handler()})
	}
	l.log = l.log.WithComponent(applog.ComponentLedger)
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	l.totals = cache.NewLRUCache[string, core.Money](size, opts.CacheTTL)

	records, budget, err := load(ctx, store)
	if err != nil {
		l.log.ErrorContext(ctx, "Failed to load ledger", applog.NewFields().
			WithOperation(applog.OpLoad).WithErrorType(applog.ErrorTypeStorage).WithError(err).ToSlice()...)
		return nil, err
	}
	for _, r := range records {
		l.ids.Observe(r.ID)
	}
	l.records, l.budget = records, budget

	if len(l.records) == 0 && opts.Seed {
		if err := l.seed(ctx); err != nil {
			return nil, err
		}
	}

	l.log.InfoContext(ctx, "Ledger loaded",
		applog.FieldOperation, applog.OpLoad,
		applog.FieldCount, len(l.records),
		applog.FieldBudgetCents, l.budget.Cents)
	return l, nil
}

// Subscribe registers an observer for subsequent mutations.
func (l *Ledger) Subscribe(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, o)
}

// Create validates the input, assigns a fresh id and stores the record at the front.
func (l *Ledger) Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	fields, err := in.Parse()
	if err != nil {
		l.logRejected(ctx, applog.OpCreate, err)
		return core.Expense{}, err
	}

	l.mu.Lock()
	now := l.clock.Now()
	prev := l.statusLocked(now)
	rec := core.Expense{
		ID:          l.ids.Next(now),
		Amount:      fields.Amount,
		Category:    fields.Category,
		Date:        fields.Date,
		Description: fields.Description,
		Timestamp:   fields.Date.UnixMilli(),
	}
	next := make([]core.Expense, 0, len(l.records)+1)
	next = append(next, rec)
	next = append(next, l.records...)
	if err := l.commitRecordsLocked(ctx, applog.OpCreate, next); err != nil {
		l.mu.Unlock()
		return core.Expense{}, err
	}
	status := l.statusLocked(now)
	observers := l.observers
	l.mu.Unlock()

	l.log.InfoContext(ctx, "Expense created", applog.NewFields().
		WithOperation(applog.OpCreate).
		WithExpense(rec.ID, rec.Amount.Cents, rec.Category.String(), rec.Date.String()).
		WithBudget(status.Limit.Cents, status.Spent.Cents, status.Tier.String()).ToSlice()...)

	l.notify(ctx, observers, Event{Kind: EventCreated, OccurredAt: now, Expense: &rec, Status: status, PreviousTier: prev.Tier})
	return rec, nil
}

// Update replaces the mutable fields of an existing record, keeping its id and position.
func (l *Ledger) Update(ctx context.Context, id int64, in core.ExpenseInput) (core.Expense, error) {
	fields, err := in.Parse()
	if err != nil {
		l.logRejected(ctx, applog.OpUpdate, err)
		return core.Expense{}, err
	}

	l.mu.Lock()
	idx := l.indexLocked(id)
	if idx < 0 {
		l.mu.Unlock()
		err := fmt.Errorf("%w: id %d", core.ErrNotFound, id)
		l.logRejected(ctx, applog.OpUpdate, err)
		return core.Expense{}, err
	}
	now := l.clock.Now()
	prev := l.statusLocked(now)
	old := l.records[idx]
	rec := core.Expense{
		ID:          old.ID,
		Amount:      fields.Amount,
		Category:    fields.Category,
		Date:        fields.Date,
		Description: fields.Description,
		Timestamp:   fields.Date.UnixMilli(),
	}
	next := append([]core.Expense(nil), l.records...)
	next[idx] = rec
	if err := l.commitRecordsLocked(ctx, applog.OpUpdate, next); err != nil {
		l.mu.Unlock()
		return core.Expense{}, err
	}
	status := l.statusLocked(now)
	observers := l.observers
	l.mu.Unlock()

	l.log.InfoContext(ctx, "Expense updated", applog.NewFields().
		WithOperation(applog.OpUpdate).
		WithExpense(rec.ID, rec.Amount.Cents, rec.Category.String(), rec.Date.String()).
		WithBudget(status.Limit.Cents, status.Spent.Cents, status.Tier.String()).ToSlice()...)

	l.notify(ctx, observers, Event{Kind: EventUpdated, OccurredAt: now, Expense: &rec, Previous: &old, Status: status, PreviousTier: prev.Tier})
	return rec, nil
}

// Delete removes the record with the given id.
func (l *Ledger) Delete(ctx context.Context, id int64) error {
	l.mu.Lock()
	idx := l.indexLocked(id)
	if idx < 0 {
		l.mu.Unlock()
		err := fmt.Errorf("%w: id %d", core.ErrNotFound, id)
		l.logRejected(ctx, applog.OpDelete, err)
		return err
	}
	now := l.clock.Now()
	prev := l.statusLocked(now)
	removed := l.records[idx]
	next := make([]core.Expense, 0, len(l.records)-1)
	next = append(next, l.records[:idx]...)
	next = append(next, l.records[idx+1:]...)
	if err := l.commitRecordsLocked(ctx, applog.OpDelete, next); err != nil {
		l.mu.Unlock()
		return err
	}
	status := l.statusLocked(now)
	observers := l.observers
	l.mu.Unlock()

	l.log.InfoContext(ctx, "Expense deleted", applog.NewFields().
		WithOperation(applog.OpDelete).
		WithExpense(removed.ID, removed.Amount.Cents, removed.Category.String(), removed.Date.String()).ToSlice()...)

	l.notify(ctx, observers, Event{Kind: EventDeleted, OccurredAt: now, Expense: &removed, Status: status, PreviousTier: prev.Tier})
	return nil
}

// SetBudget replaces the monthly limit. Zero is reserved for "unset", so the
// limit must be strictly positive.
func (l *Ledger) SetBudget(ctx context.Context, limit string) error {
	m, err := core.ParseAmount(limit)
	if err != nil {
		err := fmt.Errorf("%w: %q", core.ErrInvalidBudget, limit)
		l.logRejected(ctx, applog.OpSetBudget, err)
		return err
	}

	l.mu.Lock()
	now := l.clock.Now()
	prev := l.statusLocked(now)
	if err := l.store.Set(ctx, storage.KeyBudget, m.String()); err != nil {
		l.mu.Unlock()
		err = fmt.Errorf("%w: save budget: %w", core.ErrStorage, err)
		l.logStorageFailure(ctx, applog.OpSetBudget, err)
		return err
	}
	l.budget = m
	status := l.statusLocked(now)
	observers := l.observers
	l.mu.Unlock()

	l.log.InfoContext(ctx, "Budget updated", applog.NewFields().
		WithOperation(applog.OpSetBudget).
		WithBudget(status.Limit.Cents, status.Spent.Cents, status.Tier.String()).ToSlice()...)

	l.notify(ctx, observers, Event{Kind: EventBudgetSet, OccurredAt: now, Status: status, PreviousTier: prev.Tier})
	return nil
}

// Get returns the record with the given id.
func (l *Ledger) Get(id int64) (core.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.indexLocked(id)
	if idx < 0 {
		return core.Expense{}, fmt.Errorf("%w: id %d", core.ErrNotFound, id)
	}
	return l.records[idx], nil
}

// Records returns a copy of all records in ledger order (newest inserted first).
func (l *Ledger) Records() []core.Expense {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Expense(nil), l.records...)
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Budget returns the monthly limit; zero means no budget is configured.
func (l *Ledger) Budget() core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.budget
}

// MonthlyTotal sums amounts dated in the calendar month and year of ref.
func (l *Ledger) MonthlyTotal(ref time.Time) core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.monthlyTotalLocked(ref)
}

// BudgetStatus compares the spending of ref's month against the monthly limit.
func (l *Ledger) BudgetStatus(ref time.Time) core.BudgetStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.statusLocked(ref)
}

// Filter returns matching records ordered by expense date, most recent first.
// Records with the same date keep their ledger order.
func (l *Ledger) Filter(f core.Filter) []core.Expense {
	l.mu.Lock()
	out := make([]core.Expense, 0, len(l.records))
	for _, r := range l.records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	l.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// CategorySummary totals every record by category. Categories without
// records are absent from the map.
func (l *Ledger) CategorySummary() map[core.Category]core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.categorySummaryLocked()
}

// Dashboard returns the overview cards for ref's month.
func (l *Ledger) Dashboard(ref time.Time) core.Dashboard {
	l.mu.Lock()
	defer l.mu.Unlock()
	status := l.statusLocked(ref)
	return core.Dashboard{
		MonthlyTotal:   status.Spent,
		Remaining:      status.Remaining,
		TotalExpenses:  len(l.records),
		Budget:         status,
		RemainingLevel: core.ClassifyRemaining(status.Remaining, status.Limit),
	}
}

// Now exposes the ledger clock so hosts evaluate "today" the same way.
func (l *Ledger) Now() time.Time {
	return l.clock.Now()
}

func (l *Ledger) monthlyTotalLocked(ref time.Time) core.Money {
	key := ref.Format(monthKeyLayout)
	if total, ok := l.totals.Get(key); ok {
		return total
	}
	var total core.Money
	for _, r := range l.records {
		if r.Date.SameMonth(ref) {
			total = total.Add(r.Amount)
		}
	}
	l.totals.Set(key, total)
	return total
}

func (l *Ledger) categorySummaryLocked() map[core.Category]core.Money {
	summary := make(map[core.Category]core.Money)
	for _, r := range l.records {
		summary[r.Category] = summary[r.Category].Add(r.Amount)
	}
	return summary
}

func (l *Ledger) statusLocked(ref time.Time) core.BudgetStatus {
	return core.NewBudgetStatus(l.monthlyTotalLocked(ref), l.budget)
}

func (l *Ledger) indexLocked(id int64) int {
	for i, r := range l.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// commitRecordsLocked persists next and swaps it in only when the write succeeded.
func (l *Ledger) commitRecordsLocked(ctx context.Context, op string, next []core.Expense) error {
	if err := saveExpenses(ctx, l.store, next); err != nil {
		l.logStorageFailure(ctx, op, err)
		return err
	}
	l.records = next
	l.totals.Purge()
	return nil
}

func (l *Ledger) notify(ctx context.Context, observers []Observer, ev Event) {
	if len(observers) == 0 {
		return
	}
	ev.ID = uuid.NewString()
	for _, o := range observers {
		if err := o.Notify(ctx, ev); err != nil {
			// the mutation is already persisted
			l.log.WarnContext(ctx, "Observer failed",
				applog.FieldEventID, ev.ID,
				applog.FieldOperation, ev.Kind.String(),
				applog.FieldError, err)
		}
	}
}

func (l *Ledger) logRejected(ctx context.Context, op string, err error) {
	kind := applog.ErrorTypeValidation
	if isNotFound(err) {
		kind = applog.ErrorTypeNotFound
	}
	l.log.WarnContext(ctx, "Ledger operation rejected", applog.NewFields().
		WithOperation(op).WithErrorType(kind).WithError(err).ToSlice()...)
}

func (l *Ledger) logStorageFailure(ctx context.Context, op string, err error) {
	l.log.ErrorContext(ctx, "Ledger write failed", applog.NewFields().
		WithOperation(op).WithErrorType(applog.ErrorTypeStorage).WithError(err).ToSlice()...)
}
