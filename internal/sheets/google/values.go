package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/worker"
)

const amountColumn = 2

// toValues converts export rows into sheet cells. Amounts become numbers so
// the sheet can sum them; the header row is kept as text.
func toValues(rows [][]string) ([][]any, error) {
	out := make([][]any, 0, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if i > 0 && len(row) > amountColumn {
			d, err := core.ParseDecimal(row[amountColumn])
			if err != nil {
				return nil, fmt.Errorf("row %d: amount %q: %w", i, row[amountColumn], err)
			}
			cells[amountColumn] = d.InexactFloat64()
		}
		out = append(out, cells)
	}
	return out, nil
}

func exportRange(sheet string, rows int) string {
	if rows < 1 {
		rows = 1
	}
	return fmt.Sprintf("%s!A1:D%d", sheet, rows)
}

func alertRow(a worker.Alert) []any {
	return []any{
		a.OccurredAt.UTC().Format(time.RFC3339),
		a.Kind,
		a.Tier.String(),
		strconv.FormatFloat(a.Status.Percentage, 'f', 1, 64),
		a.Message,
		a.EventID,
	}
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
