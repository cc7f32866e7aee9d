package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-01-10", true},
		{" 2024-12-31 ", true},
		{"2024-02-30", false},
		{"2024-1-10", false},
		{"10/01/2024", false},
		{"", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q expected ok, got %v", tc.in, err)
			}
			if d.Location() != time.UTC || d.Hour() != 0 {
				t.Fatalf("%q expected midnight UTC, got %v", tc.in, d.Time)
			}
			continue
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%q expected validation error, got %v", tc.in, err)
		}
	}
}

func TestDateSameMonth(t *testing.T) {
	d := NewDate(2024, 3, 31)
	if !d.SameMonth(time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)) {
		t.Fatal("expected same month")
	}
	if d.SameMonth(time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("different year must not match")
	}
	if d.SameMonth(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("different month must not match")
	}
}

func TestExpenseJSON(t *testing.T) {
	e := Expense{
		ID:          1700000000000,
		Amount:      Money{Cents: 12050},
		Category:    Food,
		Date:        NewDate(2024, 1, 10),
		Description: "Lunch",
		Timestamp:   NewDate(2024, 1, 10).UnixMilli(),
	}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":1700000000000,"amount":120.5,"category":"food","date":"2024-01-10","description":"Lunch","timestamp":1704844800000}`
	if string(data) != want {
		t.Fatalf("unexpected json:\n got %s\nwant %s", data, want)
	}

	var back Expense
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != e {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, e)
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{ID: 1, Amount: Money{Cents: 100}, Category: Food, Date: NewDate(2025, 1, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{ID: 1, Amount: Money{Cents: 0}, Category: Food, Date: NewDate(2025, 1, 1)},
		{ID: 1, Amount: Money{Cents: 1}, Category: "", Date: NewDate(2025, 1, 1)},
		{ID: 1, Amount: Money{Cents: 1}, Category: "groceries", Date: NewDate(2025, 1, 1)},
		{ID: 1, Amount: Money{Cents: 1}, Category: Food},
		{ID: 0, Amount: Money{Cents: 1}, Category: Food, Date: NewDate(2025, 1, 1)},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseInputParse(t *testing.T) {
	fields, err := ExpenseInput{Amount: "200", Category: " Health ", Date: "2024-05-01"}.Parse()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if fields.Amount.Cents != 20000 || fields.Category != Health || fields.Date.String() != "2024-05-01" {
		t.Fatalf("unexpected fields: %+v", fields)
	}

	cases := []struct {
		name string
		in   ExpenseInput
		want error
	}{
		{"missing amount", ExpenseInput{Category: "food", Date: "2024-05-01"}, ErrInvalidAmount},
		{"zero amount", ExpenseInput{Amount: "0", Category: "food", Date: "2024-05-01"}, ErrInvalidAmount},
		{"negative amount", ExpenseInput{Amount: "-5", Category: "food", Date: "2024-05-01"}, ErrInvalidAmount},
		{"garbage amount", ExpenseInput{Amount: "abc", Category: "food", Date: "2024-05-01"}, ErrInvalidAmount},
		{"missing category", ExpenseInput{Amount: "5", Date: "2024-05-01"}, ErrEmptyCategory},
		{"unknown category", ExpenseInput{Amount: "5", Category: "pets", Date: "2024-05-01"}, ErrUnknownCategory},
		{"missing date", ExpenseInput{Amount: "5", Category: "food"}, ErrInvalidDate},
		{"bad date", ExpenseInput{Amount: "5", Category: "food", Date: "2024-13-01"}, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.in.Parse()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation kind, got %v", err)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	cats := Categories()
	if len(cats) != 8 {
		t.Fatalf("expected 8 categories, got %d", len(cats))
	}
	if Health.Label() != "💊 Health & Medical" || Health.Color() != "#98d8c8" {
		t.Fatalf("unexpected health info: %q %q", Health.Label(), Health.Color())
	}
	if Food.Icon() != "🍕" {
		t.Fatalf("unexpected icon %q", Food.Icon())
	}
	if c, ok := ParseCategory("TRANSPORT"); !ok || c != Transport {
		t.Fatalf("expected transport, got %q %v", c, ok)
	}
	if Category("pets").Valid() {
		t.Fatal("pets must not be valid")
	}
	// mutating the copy must not leak into the table
	cats[0].Label = "changed"
	if Food.Label() == "changed" {
		t.Fatal("Categories must return a copy")
	}
}

func TestFilterMatches(t *testing.T) {
	e := Expense{Category: Food, Date: NewDate(2024, 1, 15)}
	cases := []struct {
		f    Filter
		want bool
	}{
		{Filter{}, true},
		{Filter{Category: Food}, true},
		{Filter{Category: Rent}, false},
		{Filter{StartDate: "2024-01-15"}, true},
		{Filter{StartDate: "2024-01-16"}, false},
		{Filter{EndDate: "2024-01-15"}, true},
		{Filter{EndDate: "2024-01-14"}, false},
		{Filter{Category: Food, StartDate: "2024-01-10", EndDate: "2024-01-20"}, true},
	}
	for i, tc := range cases {
		if got := tc.f.Matches(e); got != tc.want {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, got)
		}
	}
}
