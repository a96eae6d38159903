package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/config"
	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/handler"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/cache"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/gemini"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/observability"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/resilience"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/snapshot"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/store"
	"github.com/boddenberg/lessence-studio-bfa/internal/port"
	"github.com/boddenberg/lessence-studio-bfa/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("store_backend", cfg.StoreBackend),
		zap.String("timezone", cfg.Timezone),
		zap.Int("business_start_hour", cfg.BusinessStartHour),
		zap.Int("business_end_hour", cfg.BusinessEndHour),
		zap.Duration("payment_delay", cfg.PaymentDelay),
		zap.Duration("wizard_ttl", cfg.WizardTTL),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Bool("assistant_enabled", cfg.GeminiAPIKey != ""),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "lessence-studio-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrentCheckouts,
	}
	checkouts := resilience.NewBulkhead(resilienceCfg.MaxConcurrency)

	// --- Snapshot store ---
	ctx := context.Background()
	snap, closeStore, err := openStore(ctx, cfg, resilienceCfg, logger)
	if err != nil {
		logger.Fatal("failed to open snapshot store", zap.Error(err))
	}
	defer closeStore()

	catalog := store.NewCatalogRepository(snap, logger)
	appointments := store.NewAppointmentRepository(snap, logger)
	accounts := store.NewAccountRepository(snap, logger)

	if err := catalog.Seed(ctx); err != nil {
		logger.Fatal("failed to seed catalog", zap.Error(err))
	}

	// --- Cache ---
	revoked := cache.New[bool](cfg.SessionTTL)
	defer revoked.Close()
	reports := cache.New[*domain.AnalyticsReport](cfg.AnalyticsCacheTTL)
	defer reports.Close()

	// --- Assistant ---
	var caller port.AssistantCaller
	if cfg.GeminiAPIKey != "" {
		gc, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, resilience.NewCircuitBreaker("gemini", logger), logger)
		if err != nil {
			logger.Fatal("failed to create gemini client", zap.Error(err))
		}
		defer gc.Close()
		caller = gc
	} else {
		logger.Warn("assistant: GEMINI_API_KEY not set, replies will use the fallback message")
	}

	// --- Services ---
	loc := cfg.Location()
	bookings := service.NewBookingService(catalog, appointments, checkouts, service.BookingConfig{
		Hours: domain.BusinessHours{
			StartHour: cfg.BusinessStartHour,
			EndHour:   cfg.BusinessEndHour,
			OpenDays:  cfg.BusinessDays,
		},
		Location:     loc,
		PaymentDelay: cfg.PaymentDelay,
		SessionTTL:   cfg.WizardTTL,
	}, metrics, logger)
	defer bookings.Close()

	access := service.NewAccessControl(accounts, catalog, revoked, service.AccessConfig{
		SuperAdminUsername: cfg.SuperAdminUsername,
		SuperAdminPassword: cfg.SuperAdminPassword,
		JWTSecret:          cfg.JWTSecret,
		SessionTTL:         cfg.SessionTTL,
		RecoveryTTL:        cfg.RecoveryTTL,
	}, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Store:        snap,
		Catalog:      service.NewCatalogService(catalog),
		Bookings:     bookings,
		Appointments: service.NewAppointmentService(catalog, appointments, metrics, logger),
		Analytics:    service.NewAnalyticsService(catalog, appointments, reports, loc, metrics, logger),
		Access:       access,
		Assistant:    service.NewAssistantBridge(caller, catalog, metrics, logger),
		Metrics:      metrics,
	}, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// openStore builds the configured snapshot backend and waits for it to answer
// a ping, retrying with backoff.
func openStore(ctx context.Context, cfg *config.Config, rc resilience.Config, logger *zap.Logger) (port.SnapshotStore, func(), error) {
	var (
		snap    port.SnapshotStore
		closeFn = func() {}
	)

	switch cfg.StoreBackend {
	case "redis":
		r, err := snapshot.NewRedisFromURL(cfg.RedisURL, logger)
		if err != nil {
			return nil, nil, err
		}
		snap, closeFn = r, func() { _ = r.Close() }
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create pgx pool: %w", err)
		}
		snap, closeFn = snapshot.NewPostgres(pool), pool.Close
	default:
		logger.Warn("using in-memory snapshot store; data is lost on restart")
		return snapshot.NewMemory(), closeFn, nil
	}

	err := resilience.RetryWithBackoff(ctx, rc, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return snap.Ping(pingCtx)
	})
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("ping %s: %w", cfg.StoreBackend, err)
	}

	if pg, ok := snap.(*snapshot.Postgres); ok {
		if err := pg.EnsureSchema(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
	}

	logger.Info("snapshot store ready", zap.String("backend", cfg.StoreBackend))
	return snap, closeFn, nil
}
