package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ropeartlab/ropeartlab/internal/admin"
	"github.com/ropeartlab/ropeartlab/internal/analytics"
	"github.com/ropeartlab/ropeartlab/internal/api"
	"github.com/ropeartlab/ropeartlab/internal/config"
	"github.com/ropeartlab/ropeartlab/internal/messaging"
	"github.com/ropeartlab/ropeartlab/internal/orders"
	"github.com/ropeartlab/ropeartlab/internal/products"
	"github.com/ropeartlab/ropeartlab/internal/store"
	"github.com/ropeartlab/ropeartlab/internal/store/localstore"
	"github.com/ropeartlab/ropeartlab/internal/store/postgres"
	"github.com/ropeartlab/ropeartlab/internal/telemetry"
	"github.com/ropeartlab/ropeartlab/internal/users"
	"github.com/ropeartlab/ropeartlab/internal/webhooks"
)

const (
	serviceName    = "ropeartlab-api"
	serviceVersion = "1.0.0"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()

	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion, cfg.Environment)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion, cfg.Environment)
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(context.Background()) }()

	st, cleanup, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	bus := messaging.NewBus(cfg.KafkaBrokers, logger)
	defer func() { _ = bus.Close() }()
	if bus == nil {
		logger.Info("no kafka brokers configured, events disabled")
	}

	engine := orders.NewEngine(st, bus, logger)
	catalog := products.NewService(st, bus, logger)
	userService := users.NewService(st, logger)

	mux := http.NewServeMux()
	orders.NewHandler(engine, logger).Register(mux)
	products.NewHandler(catalog, logger).Register(mux)
	users.NewHandler(userService, logger).Register(mux)
	admin.NewHandler(st, engine, logger).Register(mux, cfg.AdminToken)
	analytics.NewHandler(st, logger).Register(mux)
	webhooks.NewHandler(
		webhooks.NewWhatsAppIngestor(st, logger),
		engine,
		cfg.WhatsAppVerifyToken,
		cfg.PixWebhookSecret,
		logger,
	).Register(mux)

	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			api.ErrorMessage(w, logger, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		api.Message(w, logger, "ok")
	})

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	sweeper := products.NewSweeper(catalog, cfg.TrashRetention, cfg.TrashSweepInterval, logger)
	go sweeper.Run(sweepCtx)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(telemetry.WithHTTPRoute(mux), "server"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting api server",
			"port", cfg.Port, "backend", cfg.StoreBackend, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

// openStore selects the persistence backend. Both satisfy the same store
// contract, so everything above this call is backend-agnostic.
func openStore(cfg config.Config, logger *slog.Logger) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendLocal:
		st, err := localstore.Open(cfg.LocalStorePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using local json store", "path", cfg.LocalStorePath)
		return st, func() {}, nil

	default:
		db, err := telemetry.OpenDB("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgres.New(db), func() { _ = db.Close() }, nil
	}
}
