package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
	gsheet "expensetracker/internal/sheets/google"
	"expensetracker/internal/worker"
)

const (
	janitorInterval = time.Minute
	shutdownTimeout = 30 * time.Second
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).ValidateConsumer)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	logger.Info("Starting budget-alerts",
		applog.FieldOperation, applog.OpStartup,
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	client.SetLogger(logger)

	var sink worker.AlertSink
	if cfg.SheetsEnabled() {
		sheets, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			AlertsSheetName:    cfg.GoogleAlertsSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			_ = client.Close()
			os.Exit(1)
		}
		sink = sheets
		logger.Info("Alerts will be appended to Google Sheets",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleAlertsSheetName)
	} else {
		logger.Info("Google Sheets disabled, alerts are only logged")
	}

	w := worker.NewAlertWorker(logger, sink, cfg.AlertDedupeSize, cfg.AlertDedupeTTL)

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", applog.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeLedgerEvents(gctx, w.HandleLedgerEvent)
	})
	g.Go(func() error {
		return w.RunJanitor(gctx, janitorInterval)
	})

	err = g.Wait()
	stats := w.Stats()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Alert consumer stopped", applog.FieldError, err,
			"processed", stats.Processed,
			"alerts", stats.Alerts,
			"duplicates", stats.Duplicates)
		_ = client.Close()
		os.Exit(1)
	}

	<-done
	logger.Info("Alert consumer stopped",
		applog.FieldOperation, applog.OpShutdown,
		"processed", stats.Processed,
		"alerts", stats.Alerts,
		"duplicates", stats.Duplicates)
}
