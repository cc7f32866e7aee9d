// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents. Parsing and rendering go through
// shopspring/decimal so user input such as "12.345" or "1e3" is handled
// without floating-point drift.
package core

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents.
type Money struct {
	Cents int64
}

// MaxCents caps a single amount at 10,000,000,000.00.
const MaxCents int64 = 1_000_000_000_000

var (
	hundred  = decimal.NewFromInt(100)
	maxMoney = decimal.New(MaxCents, -2)
)

// NewMoney converts a decimal into cents, rounding half away from zero.
func NewMoney(d decimal.Decimal) Money {
	return Money{Cents: d.Mul(hundred).Round(0).IntPart()}
}

// ParseDecimal reads a decimal string. Both dot (12.34) and comma (12,34)
// separators are accepted.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ParseAmount parses a strictly positive amount. Values that round to zero
// cents are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234
//	ParseAmount("12,34")  -> 1234
//	ParseAmount("12.345") -> 1235 (half-up)
//	ParseAmount("0.004")  -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsPositive() || d.GreaterThan(maxMoney) {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	m := NewMoney(d)
	if err := m.Validate(); err != nil {
		return Money{}, fmt.Errorf("%w: %q", err, s)
	}
	return m, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxCents {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Add saturates at the int64 bounds instead of wrapping.
func (m Money) Add(o Money) Money {
	switch {
	case o.Cents > 0 && m.Cents > math.MaxInt64-o.Cents:
		return Money{Cents: math.MaxInt64}
	case o.Cents < 0 && m.Cents < math.MinInt64-o.Cents:
		return Money{Cents: math.MinInt64}
	}
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// String renders the shortest decimal form: 200, 120.5, 0.01.
func (m Money) String() string {
	return m.Decimal().String()
}

// Fixed renders two decimal places for display: 200.00.
func (m Money) Fixed() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	if d.Abs().GreaterThan(maxMoney) {
		return fmt.Errorf("amount %s out of range", d)
	}
	*m = NewMoney(d)
	return nil
}
