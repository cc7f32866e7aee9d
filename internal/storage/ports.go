package storage

import (
	"context"
	"errors"
)

// Keys shared by the ledger and the host.
const (
	KeyExpenses = "expenses"
	KeyBudget   = "budget"
	KeyTheme    = "theme"
)

// ErrQuotaExceeded is returned when a write would exceed the store's size limit.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KeyValueStore is a string key-value store. Get reports ok=false for missing keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
