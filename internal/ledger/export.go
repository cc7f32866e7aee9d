package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"expensetracker/internal/core"
)

// CSVHeader is the first row of every export.
var CSVHeader = []string{"Date", "Category", "Amount", "Description"}

type (
	// Snapshot is the full JSON export document.
	Snapshot struct {
		Expenses   []core.Expense  `json:"expenses"`
		Budget     core.Money      `json:"budget"`
		ExportDate time.Time       `json:"exportDate"`
		Summary    SnapshotSummary `json:"summary"`
	}

	SnapshotSummary struct {
		TotalExpenses   int                          `json:"totalExpenses"`
		MonthlyTotal    core.Money                   `json:"monthlyTotal"`
		CategorySummary map[core.Category]core.Money `json:"categorySummary"`
	}
)

// ExportFileName is the suggested name for a CSV export made on day t.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("expense-tracker-%s.csv", core.DateOf(t).String())
}

// Rows returns the header followed by one row per record in ledger order.
// Categories are rendered with their display label.
func (l *Ledger) Rows() [][]string {
	records := l.Records()
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, append([]string(nil), CSVHeader...))
	for _, r := range records {
		rows = append(rows, []string{
			r.Date.String(),
			r.Category.Label(),
			r.Amount.String(),
			r.Description,
		})
	}
	return rows
}

// CSV renders Rows with every field quoted. Embedded quotes are doubled.
func (l *Ledger) CSV() string {
	rows := l.Rows()
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, field := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(field, `"`, `""`))
			b.WriteByte('"')
		}
	}
	return b.String()
}

// Snapshot assembles the JSON export document as of ref. All parts are read
// under one lock so they describe the same ledger state.
func (l *Ledger) Snapshot(ref time.Time) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Expenses:   append([]core.Expense(nil), l.records...),
		Budget:     l.budget,
		ExportDate: ref.UTC(),
		Summary: SnapshotSummary{
			TotalExpenses:   len(l.records),
			MonthlyTotal:    l.monthlyTotalLocked(ref),
			CategorySummary: l.categorySummaryLocked(),
		},
	}
}

// JSON renders the snapshot with indentation.
func (s Snapshot) JSON() ([]byte, error) {
	if s.Expenses == nil {
		s.Expenses = []core.Expense{}
	}
	return json.MarshalIndent(s, "", "  ")
}
