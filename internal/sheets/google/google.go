package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "expensetracker/internal/log"
	"expensetracker/internal/worker"
)

const (
	defaultExpensesSheet = "Expenses"
	defaultAlertsSheet   = "Alerts"
)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	AlertsSheetName    string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// Client exports ledger rows to a spreadsheet and appends budget alerts to a
// second tab.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	expensesBase  string
	alertsSheet   string
	log           *applog.Logger
}

var _ worker.AlertSink = (*Client)(nil)

// New creates a Sheets client using Service Account credentials.
func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	log := logger.WithComponent(applog.ComponentSheets)

	svc, err := newSheetsService(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, cfg, log), nil
}

func newClient(svc *gsheet.Service, cfg Config, log *applog.Logger) *Client {
	expenses := strings.TrimSpace(cfg.SheetName)
	if expenses == "" {
		expenses = defaultExpensesSheet
	}
	alerts := strings.TrimSpace(cfg.AlertsSheetName)
	if alerts == "" {
		alerts = defaultAlertsSheet
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		expensesBase:  expenses,
		alertsSheet:   alerts,
		log:           log,
	}
}

// newSheetsService initializes a Sheets Service from inline JSON, a key file,
// or GOOGLE_APPLICATION_CREDENTIALS, in that order.
func newSheetsService(ctx context.Context, cfg Config, log *applog.Logger) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	log.DebugContext(ctx, "Google Sheets service created", "credentials_size", len(credentialsJSON))
	return service, nil
}

// ExpensesSheet is the tab an export made at t is written to.
func (c *Client) ExpensesSheet(t time.Time) string {
	return yearPrefixedName(c.expensesBase, t.Year())
}

// ExportRows replaces the expenses tab with rows (header first) and returns
// the updated range.
func (c *Client) ExportRows(ctx context.Context, rows [][]string, at time.Time) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	values, err := toValues(rows)
	if err != nil {
		return "", err
	}
	sheet := c.ExpensesSheet(at)

	clearRange := fmt.Sprintf("%s!A:D", sheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear %s: %w", clearRange, err)
	}

	rng := exportRange(sheet, len(values))
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", rng, err)
	}

	c.log.InfoContext(ctx, "Exported ledger to Google Sheets",
		applog.FieldOperation, applog.OpExport,
		applog.FieldCount, len(values)-1,
		"range", resp.UpdatedRange)
	return resp.UpdatedRange, nil
}

// Deliver appends one alert row to the alerts tab.
func (c *Client) Deliver(ctx context.Context, alert worker.Alert) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:F", c.alertsSheet)
	vr := &gsheet.ValueRange{Values: [][]any{alertRow(alert)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append alert to %s: %w", c.alertsSheet, err)
	}
	c.log.InfoContext(ctx, "Alert appended",
		applog.FieldEventID, alert.EventID,
		applog.FieldTier, alert.Tier.String())
	return nil
}
