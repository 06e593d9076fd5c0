package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	catalogmemory "github.com/acme/go-gin-storefront/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/acme/go-gin-storefront/internal/domains/catalog/adapters/persistence/postgres"
	catalogports "github.com/acme/go-gin-storefront/internal/domains/catalog/ports"
	inventorymemory "github.com/acme/go-gin-storefront/internal/domains/inventory/adapters/memory"
	inventorypostgres "github.com/acme/go-gin-storefront/internal/domains/inventory/adapters/persistence/postgres"
	inventoryports "github.com/acme/go-gin-storefront/internal/domains/inventory/ports"
	ordermemory "github.com/acme/go-gin-storefront/internal/domains/orders/adapters/memory"
	orderobs "github.com/acme/go-gin-storefront/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/acme/go-gin-storefront/internal/domains/orders/adapters/persistence/postgres"
	"github.com/acme/go-gin-storefront/internal/domains/orders/adapters/views"
	orderworkflowadapters "github.com/acme/go-gin-storefront/internal/domains/orders/adapters/workflows"
	orderapp "github.com/acme/go-gin-storefront/internal/domains/orders/application"
	orderports "github.com/acme/go-gin-storefront/internal/domains/orders/ports"
	"github.com/acme/go-gin-storefront/internal/platform/migrations"
	platformobservability "github.com/acme/go-gin-storefront/internal/platform/observability"
	platformpostgres "github.com/acme/go-gin-storefront/internal/platform/postgres"
	"github.com/acme/go-gin-storefront/internal/transport/httpapi"
)

// Run boots the storefront HTTP API with observability, repositories,
// workflows, and view invalidation wired.
func Run(ctx context.Context) error {
	const serviceName = "storefront-api"
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stores, cleanupStores := buildStores(ctx, cfg, logger)
	defer cleanupStores()

	cache := views.NewCache()
	invalidator, cleanupInvalidator := buildInvalidator(cfg, cache, logger)
	defer cleanupInvalidator()
	if cfg.KafkaEnabled() {
		subscriber := views.NewKafkaSubscriber(
			cfg.KafkaBrokers,
			cfg.KafkaInvalidationTopic,
			"storefront-api-"+uuid.NewString(),
			cache,
			logger,
		)
		defer func() { _ = subscriber.Close() }()
		go subscriber.Run(ctx)
	}

	coreService := orderapp.NewService(stores.catalog, stores.ledger, stores.orders, invalidator)
	orderService := orderobs.New(
		coreService,
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	var orchestrator orderports.PlacementOrchestrator = orderworkflowadapters.NewInlineOrderWorkflows(orderService)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running inline PlaceOrder", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		// The durable run invalidates views in the worker process; drop the
		// views cached here as well once it succeeds.
		orchestrator = orderworkflowadapters.NewInvalidatingOrderWorkflows(
			orderworkflowadapters.NewTemporalOrderWorkflows(temporalClient),
			cache,
		)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	router := httpapi.NewRouter(httpapi.Handlers{
		Orders:     orderService,
		Workflows:  orchestrator,
		Ledger:     stores.ledger,
		Cache:      cache,
		Middleware: []gin.HandlerFunc{otelgin.Middleware(serviceName)},
	})

	addr := ":" + cfg.Port
	logger.Info("storefront API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("storefront API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

type storeSet struct {
	catalog catalogports.Repository
	ledger  inventoryports.Ledger
	orders  orderports.Repository
}

func buildStores(ctx context.Context, cfg Config, logger *slog.Logger) (storeSet, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return memoryStores(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return memoryStores(), func() {}
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to run migrations, falling back to memory", slog.String("error", err.Error()))
		closeDB(db)
		return memoryStores(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return memoryStores(), func() {}
	}
	logger.Info("repositories configured with postgres")
	return storeSet{
		catalog: catalogpostgres.NewRepository(db),
		ledger:  inventorypostgres.NewLedger(db),
		orders:  orderpostgres.NewRepository(db),
	}, func() { _ = sqlDB.Close() }
}

func memoryStores() storeSet {
	return storeSet{
		catalog: catalogmemory.NewRepository(),
		ledger:  inventorymemory.NewLedger(),
		orders:  ordermemory.NewRepository(),
	}
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func buildInvalidator(cfg Config, cache *views.Cache, logger *slog.Logger) (orderports.ViewInvalidator, func()) {
	if !cfg.KafkaEnabled() {
		return cache, func() {}
	}
	publisher := views.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaInvalidationTopic, logger)
	logger.Info("view invalidations published to kafka",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("topic", cfg.KafkaInvalidationTopic))
	return views.Multi{cache, publisher}, func() { _ = publisher.Close() }
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	logger := workerlog.NewStructuredLogger(effectiveLogger(instruments))
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logger,
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
