package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"vibebudget/internal/amqp"
	"vibebudget/internal/cli"
	applog "vibebudget/internal/log"
	"vibebudget/internal/services"
	"vibebudget/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)

	logger.Info("Starting vibebudget-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, amqp.KeywordSavedQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// The worker holds no report cache of its own; the server's cached
	// reports go stale for at most the cache TTL after a reclassification.
	keywordService := services.NewKeywordService(repo, nil)
	reclassifyWorker := worker.NewReclassifyWorker(keywordService, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Consuming keyword saved messages", "queue", amqp.KeywordSavedQueue)
	if err := reclassifyWorker.Run(ctx, amqpClient); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
