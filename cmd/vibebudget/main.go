package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"vibebudget/internal/amqp"
	"vibebudget/internal/cache"
	"vibebudget/internal/cli"
	apphttp "vibebudget/internal/http"
	"vibebudget/internal/ingest"
	applog "vibebudget/internal/log"
	"vibebudget/internal/services"
	"vibebudget/internal/sheets"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// The broker is optional: without it imports and keyword saves still
	// work, only the background reclassification goes quiet.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, amqp.KeywordSavedQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without messaging", "error", err)
		} else {
			amqpClient = client
			defer amqpClient.Close()
		}
	}

	cacheManager := cache.NewManager()
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	opts := ingest.Options{
		StrictDates:     cfg.ImportStrictDates,
		DefaultCurrency: cfg.ImportDefaultCurrency,
	}
	importService := services.NewImportService(repo, amqpClient, opts)
	reportService := services.NewReportService(repo, cacheManager)
	keywordService := services.NewKeywordService(repo, amqpClient)

	srv := apphttp.NewServer(":"+cfg.Port, repo, importService, reportService, keywordService, logger)
	srv.ReadTimeout = 15 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	if cfg.GoogleSpreadsheetID != "" {
		source, err := sheets.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize spreadsheet source", "error", err)
			os.Exit(1)
		}
		srv.SetSheetSource(source)
		logger.Info("Spreadsheet import source connected", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting vibebudget server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
