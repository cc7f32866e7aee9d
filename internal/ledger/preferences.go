package ledger

import (
	"context"
	"fmt"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Theme is the host's colour scheme preference.
type Theme string

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown theme %q", core.ErrValidation, s)
	}
}

// Preferences stores UI settings next to the ledger keys.
type Preferences struct {
	store storage.KeyValueStore
}

func NewPreferences(store storage.KeyValueStore) *Preferences {
	return &Preferences{store: store}
}

// Theme returns the stored theme, falling back to light.
func (p *Preferences) Theme(ctx context.Context) (Theme, error) {
	raw, ok, err := p.store.Get(ctx, storage.KeyTheme)
	if err != nil {
		return ThemeLight, fmt.Errorf("%w: read theme: %w", core.ErrStorage, err)
	}
	if !ok {
		return ThemeLight, nil
	}
	t, err := ParseTheme(raw)
	if err != nil {
		return ThemeLight, nil
	}
	return t, nil
}

func (p *Preferences) SetTheme(ctx context.Context, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	if err := p.store.Set(ctx, storage.KeyTheme, string(t)); err != nil {
		return fmt.Errorf("%w: save theme: %w", core.ErrStorage, err)
	}
	return nil
}

// ToggleTheme flips between light and dark and returns the new theme.
func (p *Preferences) ToggleTheme(ctx context.Context) (Theme, error) {
	current, err := p.Theme(ctx)
	if err != nil {
		return current, err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	if err := p.SetTheme(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}
