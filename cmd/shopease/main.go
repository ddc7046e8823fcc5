package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shopease/shopease-engine/api/routes"
	"github.com/shopease/shopease-engine/internal/apiclient"
	"github.com/shopease/shopease-engine/internal/cart"
	"github.com/shopease/shopease-engine/internal/checkout"
	"github.com/shopease/shopease-engine/internal/orders"
	"github.com/shopease/shopease-engine/internal/session"
	"github.com/shopease/shopease-engine/internal/store"
	"github.com/shopease/shopease-engine/internal/wishlist"
	"github.com/shopease/shopease-engine/pkg/config"
	"github.com/shopease/shopease-engine/pkg/enums"
	"github.com/shopease/shopease-engine/pkg/logger"
	"github.com/shopease/shopease-engine/pkg/metrics"
)

const shutdownGrace = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "shopease"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "shopease",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := newBackend(ctx, cfg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeBackend(); err != nil {
			logg.Error(context.Background(), "error closing storage", err)
		}
	}()

	registry := prometheus.NewRegistry()
	engineMetrics := metrics.NewEngineMetrics(registry)
	keys := store.NewKeys(cfg.Storage.Namespace)

	client, err := apiclient.New(cfg.API.BaseURL, apiclient.WithTimeout(cfg.API.Timeout))
	if err != nil {
		logg.Error(ctx, "failed to create storefront api client", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(session.ManagerParams{
		Store:   backend,
		Keys:    keys,
		API:     client,
		Logger:  logg,
		Metrics: engineMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}
	client.SetTokenSource(sessionManager)
	client.SetUnauthorizedHook(sessionManager.HandleUnauthorized)

	state := sessionManager.Restore(ctx)
	logg.Info(logg.WithField(ctx, "phase", state.Phase.String()), "session restored")

	cartEngine, err := cart.NewEngine(ctx, cart.EngineParams{
		Store:   backend,
		Keys:    keys,
		Logger:  logg,
		Metrics: engineMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart engine", err)
		os.Exit(1)
	}

	wishlistEngine, err := wishlist.NewEngine(ctx, wishlist.EngineParams{
		Store:   backend,
		Keys:    keys,
		Logger:  logg,
		Metrics: engineMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create wishlist engine", err)
		os.Exit(1)
	}

	calculator, err := checkout.NewCalculator(cfg.Checkout)
	if err != nil {
		logg.Error(ctx, "failed to create checkout calculator", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		API:     client,
		Logger:  logg,
		Metrics: engineMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create order service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	runCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting shopease engine")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:     cfg,
			Logger:     logg,
			Cart:       cartEngine,
			Wishlist:   wishlistEngine,
			Session:    sessionManager,
			Calculator:   calculator,
			Orders:       orderService,
			PollInterval: cfg.Orders.PollInterval,
			Registry:     registry,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logg.Info(runCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(runCtx, "server shutdown failed", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(runCtx, "server stopped unexpectedly", err)
			os.Exit(1)
		}
	}
}

// newBackend selects the persistence driver. The closer is a no-op for the
// in-memory backend.
func newBackend(ctx context.Context, cfg *config.Config) (store.Store, func() error, error) {
	switch cfg.Storage.DriverKind() {
	case enums.StorageDriverMemory:
		return store.NewMemory(), func() error { return nil }, nil
	case enums.StorageDriverRedis:
		client, err := store.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	default:
		client, err := store.NewSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	}
}
