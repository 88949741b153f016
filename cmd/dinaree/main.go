package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/EedwinGglez11/dinaree/internal/amqp"
	"github.com/EedwinGglez11/dinaree/internal/config"
	apphttp "github.com/EedwinGglez11/dinaree/internal/http"
	applog "github.com/EedwinGglez11/dinaree/internal/log"
	ports "github.com/EedwinGglez11/dinaree/internal/sheets"
	gsheet "github.com/EedwinGglez11/dinaree/internal/sheets/google"
	"github.com/EedwinGglez11/dinaree/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.Setup(os.Getenv("LOG_LEVEL"))

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

	// AMQP is optional: without it mutations simply do not emit events and
	// the projection worker falls back to its timer.
	var events apphttp.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			defer amqpClient.Close()
			events = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - state-changed events will not be published")
	}

	// Same for the sheets export: the API runs without it, the export
	// endpoint just reports unavailable.
	var reportSink ports.ReportWriter
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := gsheet.New(context.Background(),
			cfg.GoogleSpreadsheetID, cfg.GoogleReportSheet,
			cfg.GoogleCredentialsFile, cfg.GoogleCredentialsJSON)
		if err != nil {
			logger.Warn("Failed to initialize Google Sheets client, export disabled", "error", err)
		} else {
			reportSink = sheetsClient
			logger.Info("Google Sheets export configured", "sheet", cfg.GoogleReportSheet)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, repo, events, reportSink, cfg.ProjectionMonths)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting dinaree API server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
