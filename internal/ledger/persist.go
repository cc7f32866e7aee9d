package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// load reads both ledger keys. Missing keys mean an empty ledger with no
// budget; unreadable values are storage errors.
func load(ctx context.Context, store storage.KeyValueStore) ([]core.Expense, core.Money, error) {
	raw, ok, err := store.Get(ctx, storage.KeyExpenses)
	if err != nil {
		return nil, core.Money{}, fmt.Errorf("%w: read expenses: %w", core.ErrStorage, err)
	}
	records, err := decodeExpenses(raw, ok)
	if err != nil {
		return nil, core.Money{}, err
	}

	raw, ok, err = store.Get(ctx, storage.KeyBudget)
	if err != nil {
		return nil, core.Money{}, fmt.Errorf("%w: read budget: %w", core.ErrStorage, err)
	}
	budget, err := decodeBudget(raw, ok)
	if err != nil {
		return nil, core.Money{}, err
	}
	return records, budget, nil
}

func decodeExpenses(raw string, ok bool) ([]core.Expense, error) {
	if !ok || strings.TrimSpace(raw) == "" || strings.TrimSpace(raw) == "null" {
		return nil, nil
	}
	var records []core.Expense
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("%w: decode expenses: %w", core.ErrStorage, err)
	}
	seen := make(map[int64]struct{}, len(records))
	for i := range records {
		r := &records[i]
		if r.Timestamp == 0 {
			r.Timestamp = r.Date.UnixMilli()
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%w: invalid expense at index %d: %w", core.ErrStorage, i, err)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate expense id %d", core.ErrStorage, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return records, nil
}

func decodeBudget(raw string, ok bool) (core.Money, error) {
	if !ok || strings.TrimSpace(raw) == "" {
		return core.Money{}, nil
	}
	d, err := core.ParseDecimal(raw)
	if err != nil {
		return core.Money{}, fmt.Errorf("%w: decode budget %q: %w", core.ErrStorage, raw, err)
	}
	if d.IsNegative() || d.GreaterThan(core.Money{Cents: core.MaxCents}.Decimal()) {
		return core.Money{}, fmt.Errorf("%w: budget out of range %q", core.ErrStorage, raw)
	}
	return core.NewMoney(d), nil
}

func saveExpenses(ctx context.Context, store storage.KeyValueStore, records []core.Expense) error {
	if records == nil {
		records = []core.Expense{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: encode expenses: %w", core.ErrStorage, err)
	}
	if err := store.Set(ctx, storage.KeyExpenses, string(data)); err != nil {
		return fmt.Errorf("%w: save expenses: %w", core.ErrStorage, err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
