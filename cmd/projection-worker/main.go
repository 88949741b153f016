package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/EedwinGglez11/dinaree/internal/amqp"
	"github.com/EedwinGglez11/dinaree/internal/config"
	applog "github.com/EedwinGglez11/dinaree/internal/log"
	ports "github.com/EedwinGglez11/dinaree/internal/sheets"
	gsheet "github.com/EedwinGglez11/dinaree/internal/sheets/google"
	mem "github.com/EedwinGglez11/dinaree/internal/sheets/memory"
	"github.com/EedwinGglez11/dinaree/internal/storage"
	"github.com/EedwinGglez11/dinaree/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.Setup(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting projection-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Export sink: Google Sheets when configured, otherwise an in-memory
	// store so the projection loop still runs end to end.
	var reportSink ports.ReportWriter
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := gsheet.New(context.Background(),
			cfg.GoogleSpreadsheetID, cfg.GoogleReportSheet,
			cfg.GoogleCredentialsFile, cfg.GoogleCredentialsJSON)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		reportSink = sheetsClient
		logger.Info("Google Sheets export configured", "sheet", cfg.GoogleReportSheet)
	} else {
		reportSink = mem.NewStore()
		logger.Info("No spreadsheet configured - reports stay in memory")
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, running on timer only", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized - recomputing on state-changed events",
				"queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - recomputing on timer only")
	}

	w := worker.NewProjectionWorker(repo, reportSink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	// Initial projection on startup so a fresh deployment exports
	// immediately instead of waiting one interval.
	if rows, err := w.RecomputeAndExport(ctx, time.Now()); err != nil {
		logger.Error("Initial projection failed", "error", err)
	} else {
		logger.Info("Initial projection complete", "report_rows", rows)
	}

	logger.Info("Projection worker running", "interval", cfg.WorkerInterval)
	if err := w.Run(ctx, amqpClient, cfg.WorkerInterval); err != nil {
		logger.Error("Projection worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Projection worker shutdown complete")
}
