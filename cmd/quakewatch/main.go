package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/couchcryptid/quakewatch/internal/adapter/httpadapter"
	"github.com/couchcryptid/quakewatch/internal/adapter/jma"
	kafkaadapter "github.com/couchcryptid/quakewatch/internal/adapter/kafka"
	"github.com/couchcryptid/quakewatch/internal/config"
	"github.com/couchcryptid/quakewatch/internal/observability"
	"github.com/couchcryptid/quakewatch/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	reporter := observability.NewReporter(logger, metrics)

	client := jma.NewClient(cfg.FeedTimeout, reporter, jma.WithFeedURL(cfg.FeedURL))

	// Publishing is feature-flagged via KAFKA_ENABLED.
	var writer *kafkaadapter.Writer
	var loader pipeline.BatchLoader
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loader = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(client, loader, logger, metrics, pipeline.Options{
		Interval:      cfg.PollInterval,
		MaxDepthKm:    cfg.MaxDepthKm,
		SeenCacheSize: cfg.SeenCacheSize,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, client, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start feed poller.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("poller error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
