package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

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
	orderapp "github.com/acme/go-gin-storefront/internal/domains/orders/application"
	orderports "github.com/acme/go-gin-storefront/internal/domains/orders/ports"
	orderworkflows "github.com/acme/go-gin-storefront/internal/durable/temporal/workflows/orders"
	"github.com/acme/go-gin-storefront/internal/platform/migrations"
	platformobservability "github.com/acme/go-gin-storefront/internal/platform/observability"
	platformpostgres "github.com/acme/go-gin-storefront/internal/platform/postgres"
	orderactivities "github.com/acme/go-gin-storefront/internal/platform/temporal/activities/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "storefront-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	catalog, ledger, orders, cleanupStores := buildStores(ctx, logger)
	defer cleanupStores()

	coreService := orderapp.NewService(catalog, ledger, orders, buildInvalidator(logger))
	orderService := orderobs.New(
		coreService,
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	activities := orderactivities.NewActivities(orderService)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderPlacementTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderPlacementWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderPlacementWorkflowName})
	w.RegisterActivityWithOptions(activities.PlaceOrder, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderPlacementTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildStores(ctx context.Context, logger *slog.Logger) (catalogports.Repository, inventoryports.Ledger, orderports.Repository, func()) {
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return catalogmemory.NewRepository(), inventorymemory.NewLedger(), ordermemory.NewRepository(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		logger.Warn("worker failed to connect to postgres (falling back to memory)", slog.String("error", err.Error()))
		return catalogmemory.NewRepository(), inventorymemory.NewLedger(), ordermemory.NewRepository(), func() {}
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("worker failed to run migrations (falling back to memory)", slog.String("error", err.Error()))
		return catalogmemory.NewRepository(), inventorymemory.NewLedger(), ordermemory.NewRepository(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("worker failed to unwrap postgres connection (falling back to memory)", slog.String("error", err.Error()))
		return catalogmemory.NewRepository(), inventorymemory.NewLedger(), ordermemory.NewRepository(), func() {}
	}
	logger.Info("worker repositories configured with postgres")
	return catalogpostgres.NewRepository(db), inventorypostgres.NewLedger(db), orderpostgres.NewRepository(db), func() { _ = sqlDB.Close() }
}

func buildInvalidator(logger *slog.Logger) orderports.ViewInvalidator {
	brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))
	if brokers == "" {
		// A worker-local cache would have no readers; without a broker the
		// API processes drop their own views after each orchestrated run.
		logger.Warn("KAFKA_BROKERS not set, worker publishes no view invalidations")
		return nil
	}
	topic := envOrDefault("KAFKA_INVALIDATION_TOPIC", "storefront.view-invalidations")
	logger.Info("worker view invalidations published to kafka", slog.String("brokers", brokers), slog.String("topic", topic))
	return views.NewKafkaPublisher(strings.Split(brokers, ","), topic, logger)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
