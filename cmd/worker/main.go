package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ropeartlab/ropeartlab/internal/config"
	"github.com/ropeartlab/ropeartlab/internal/messaging"
	"github.com/ropeartlab/ropeartlab/internal/telemetry"
	"github.com/ropeartlab/ropeartlab/internal/worker"
)

const (
	serviceName    = "ropeartlab-worker"
	serviceVersion = "1.0.0"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()

	if len(cfg.KafkaBrokers) == 0 {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion, cfg.Environment)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	consumer := messaging.NewConsumer(cfg.KafkaBrokers, messaging.TopicOrderCreated, "fulfillment-worker")
	defer func() { _ = consumer.Close() }()

	notifier := worker.NewNotifier(cfg.WhatsAppAPIURL, logger)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting fulfillment worker", "brokers", cfg.KafkaBrokers)

	if err := consumer.Consume(ctx, notifier.HandleOrderCreated); err != nil {
		if ctx.Err() == context.Canceled {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
