package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"expensetracker/internal/amqp"
	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/ledger"
	applog "expensetracker/internal/log"
	"expensetracker/internal/notify"
	gsheet "expensetracker/internal/sheets/google"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(nil)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	os.Exit(run(context.Background(), cfg, logger, os.Args[1:], os.Stdout))
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger, args []string, out io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(out)
		return 0
	}
	log := logger.WithComponent(applog.ComponentCLI)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		log.Error("Invalid backend configuration", applog.FieldError, err)
		return 1
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		log.Error("Failed to initialize store", applog.FieldError, err, applog.FieldBackend, cfg.StoreBackend)
		fmt.Fprintf(out, "error: %v\n", err)
		return exitCode(err)
	}
	defer func() {
		if err := res.Close(); err != nil {
			log.Warn("Failed to close store", applog.FieldError, err)
		}
	}()

	observers := []ledger.Observer{notify.NewLogObserver(logger)}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			log.Warn("Failed to initialize AMQP client, continuing without event publishing", applog.FieldError, err)
		} else {
			client.SetLogger(logger)
			defer client.Close()
			observers = append(observers, notify.NewAMQPObserver(client, logger))
			log.Debug("Publishing ledger events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	l, err := ledger.Open(ctx, res.Store, ledger.Options{
		Seed:      cfg.SeedSampleData,
		Logger:    logger,
		Observers: observers,
		CacheSize: cfg.QueryCacheSize,
		CacheTTL:  cfg.QueryCacheTTL,
	})
	if err != nil {
		log.Error("Failed to open ledger", applog.FieldError, err)
		fmt.Fprintf(out, "error: %v\n", err)
		return exitCode(err)
	}

	a := &app{
		ledger: l,
		prefs:  ledger.NewPreferences(res.Store),
		cfg:    cfg,
		out:    out,
		log:    log,
		sheets: func(ctx context.Context) (rowExporter, error) {
			return gsheet.New(ctx, gsheet.Config{
				SpreadsheetID:      cfg.GoogleSpreadsheetID,
				SheetName:          cfg.GoogleSheetName,
				AlertsSheetName:    cfg.GoogleAlertsSheetName,
				ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
				ServiceAccountFile: cfg.GoogleServiceAccountFile,
			}, logger)
		},
	}
	if err := a.dispatch(ctx, args); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: expense-tracker <command> [flags]

Commands:
  add         -amount 120.50 -category food [-date 2024-01-10] [-desc "Lunch"]
  edit        -id <id> [-amount] [-category] [-date] [-desc]
  delete      -id <id> -yes
  list        [-category food] [-from 2024-01-01] [-to 2024-01-31]
  budget      <monthly limit>
  status      monthly total and budget tier
  dashboard   overview cards
  summary     totals per category
  categories  list the category table
  export      [-format csv|json|sheets]
  theme       [light|dark|toggle]
`)
}
