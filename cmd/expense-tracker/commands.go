package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"expensetracker/internal/config"
	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	applog "expensetracker/internal/log"
)

var errUsage = errors.New("usage")

type rowExporter interface {
	ExportRows(ctx context.Context, rows [][]string, at time.Time) (string, error)
}

type app struct {
	ledger *ledger.Ledger
	prefs  *ledger.Preferences
	cfg    *config.Config
	out    io.Writer
	log    *applog.Logger
	sheets func(ctx context.Context) (rowExporter, error)
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "add":
		return a.add(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "list":
		return a.list(rest)
	case "budget":
		return a.budget(ctx, rest)
	case "status":
		return a.status()
	case "dashboard":
		return a.dashboard()
	case "summary":
		return a.summary()
	case "categories":
		return a.categories()
	case "export":
		return a.export(ctx, rest)
	case "theme":
		return a.theme(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *app) today() string {
	return core.DateOf(a.ledger.Now()).String()
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add")
	amount := fs.String("amount", "", "amount spent, e.g. 120.50")
	category := fs.String("category", "", "category key (see `categories`)")
	date := fs.String("date", a.today(), "date as YYYY-MM-DD")
	desc := fs.String("desc", "", "optional description")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	rec, err := a.ledger.Create(ctx, core.ExpenseInput{
		Amount: *amount, Category: *category, Date: *date, Description: *desc,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added expense %d: %s ₹%s on %s\n", rec.ID, rec.Category.Label(), rec.Amount.Fixed(), rec.Date)
	a.printWarning()
	return nil
}

func (a *app) edit(ctx context.Context, args []string) error {
	fs := a.newFlagSet("edit")
	id := fs.Int64("id", 0, "id of the expense to edit")
	amount := fs.String("amount", "", "new amount")
	category := fs.String("category", "", "new category key")
	date := fs.String("date", "", "new date as YYYY-MM-DD")
	desc := fs.String("desc", "", "new description")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	existing, err := a.ledger.Get(*id)
	if err != nil {
		return err
	}
	in := core.ExpenseInput{
		Amount:      existing.Amount.String(),
		Category:    existing.Category.String(),
		Date:        existing.Date.String(),
		Description: existing.Description,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "amount":
			in.Amount = *amount
		case "category":
			in.Category = *category
		case "date":
			in.Date = *date
		case "desc":
			in.Description = *desc
		}
	})

	rec, err := a.ledger.Update(ctx, *id, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated expense %d: %s ₹%s on %s\n", rec.ID, rec.Category.Label(), rec.Amount.Fixed(), rec.Date)
	a.printWarning()
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := a.newFlagSet("delete")
	id := fs.Int64("id", 0, "id of the expense to delete")
	yes := fs.Bool("yes", false, "confirm the deletion")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if !*yes {
		return fmt.Errorf("%w: pass -yes to confirm deleting expense %d", errUsage, *id)
	}
	if err := a.ledger.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted expense %d\n", *id)
	return nil
}

func (a *app) list(args []string) error {
	fs := a.newFlagSet("list")
	category := fs.String("category", "", "only this category")
	from := fs.String("from", "", "start date, inclusive")
	to := fs.String("to", "", "end date, inclusive")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	var f core.Filter
	if *category != "" {
		c, ok := core.ParseCategory(*category)
		if !ok {
			return fmt.Errorf("%w: %q", core.ErrUnknownCategory, *category)
		}
		f.Category = c
	}
	f.StartDate, f.EndDate = strings.TrimSpace(*from), strings.TrimSpace(*to)

	records := a.ledger.Filter(f)
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No expenses found")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t₹%s\t%s\n", r.ID, r.Date, r.Category.Label(), r.Amount.Fixed(), r.Description)
	}
	return tw.Flush()
}

func (a *app) budget(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: budget takes exactly one amount", errUsage)
	}
	if err := a.ledger.SetBudget(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Monthly budget set to ₹%s\n", a.ledger.Budget().Fixed())
	a.printWarning()
	return nil
}

func (a *app) status() error {
	st := a.ledger.BudgetStatus(a.ledger.Now())
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "This month\t₹%s\n", st.Spent.Fixed())
	if !st.Configured() {
		fmt.Fprintln(tw, "Budget\tnot set")
		return tw.Flush()
	}
	fmt.Fprintf(tw, "Budget\t₹%s\n", st.Limit.Fixed())
	fmt.Fprintf(tw, "Remaining\t₹%s\n", st.Remaining.Fixed())
	fmt.Fprintf(tw, "Used\t%.1f%% %s\n", st.Percentage, progressBar(st.ProgressPercent()))
	fmt.Fprintf(tw, "Tier\t%s\n", st.Tier)
	if err := tw.Flush(); err != nil {
		return err
	}
	a.printWarning()
	return nil
}

func (a *app) dashboard() error {
	d := a.ledger.Dashboard(a.ledger.Now())
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "This month\t₹%s\n", d.MonthlyTotal.Fixed())
	fmt.Fprintf(tw, "Remaining budget\t₹%s\t(%s)\n", d.Remaining.Fixed(), d.RemainingLevel)
	fmt.Fprintf(tw, "Total expenses\t%d\n", d.TotalExpenses)
	if d.Budget.Configured() {
		fmt.Fprintf(tw, "Budget used\t%s %.1f%%\n", progressBar(d.Budget.ProgressPercent()), d.Budget.Percentage)
	}
	return tw.Flush()
}

func (a *app) summary() error {
	amounts := core.SortedAmounts(a.ledger.CategorySummary())
	if len(amounts) == 0 {
		fmt.Fprintln(a.out, "No expenses yet")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, ca := range amounts {
		fmt.Fprintf(tw, "%s\t₹%s\n", ca.Category.Label(), ca.Amount.Fixed())
	}
	return tw.Flush()
}

func (a *app) categories() error {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tCOLOR")
	for _, c := range core.Categories() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Key, c.Label, c.Color)
	}
	return tw.Flush()
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := a.newFlagSet("export")
	format := fs.String("format", "csv", "csv, json or sheets")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	now := a.ledger.Now()

	switch *format {
	case "csv":
		path := filepath.Join(a.cfg.ExportDir, ledger.ExportFileName(now))
		return a.writeExport(ctx, path, []byte(a.ledger.CSV()))
	case "json":
		data, err := a.ledger.Snapshot(now).JSON()
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		name := strings.TrimSuffix(ledger.ExportFileName(now), ".csv") + ".json"
		return a.writeExport(ctx, filepath.Join(a.cfg.ExportDir, name), data)
	case "sheets":
		if !a.cfg.SheetsEnabled() {
			return fmt.Errorf("%w: GOOGLE_SPREADSHEET_ID is not set", errUsage)
		}
		exporter, err := a.sheets(ctx)
		if err != nil {
			return err
		}
		rng, err := exporter.ExportRows(ctx, a.ledger.Rows(), now)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Exported %d expenses to %s\n", a.ledger.Len(), rng)
		return nil
	default:
		return fmt.Errorf("%w: unknown export format %q", errUsage, *format)
	}
}

func (a *app) writeExport(ctx context.Context, path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	a.log.InfoContext(ctx, "Export written",
		applog.FieldOperation, applog.OpExport,
		applog.FieldCount, a.ledger.Len(),
		"path", path)
	fmt.Fprintf(a.out, "Exported %d expenses to %s\n", a.ledger.Len(), path)
	return nil
}

func (a *app) theme(ctx context.Context, args []string) error {
	if len(args) == 0 {
		t, err := a.prefs.Theme(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Theme: %s\n", t)
		return nil
	}

	var t ledger.Theme
	var err error
	if args[0] == "toggle" {
		t, err = a.prefs.ToggleTheme(ctx)
	} else {
		t, err = ledger.ParseTheme(args[0])
		if err == nil {
			err = a.prefs.SetTheme(ctx, t)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Theme: %s\n", t)
	return nil
}

func (a *app) printWarning() {
	if msg := a.ledger.BudgetStatus(a.ledger.Now()).WarningMessage(); msg != "" {
		fmt.Fprintf(a.out, "⚠ %s\n", msg)
	}
}

func progressBar(percent float64) string {
	const width = 20
	filled := int(percent / 100 * width)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, errUsage), errors.Is(err, core.ErrValidation):
		return 2
	case errors.Is(err, core.ErrNotFound):
		return 3
	case errors.Is(err, core.ErrStorage):
		return 4
	default:
		return 1
	}
}
