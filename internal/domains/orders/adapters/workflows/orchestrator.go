package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/client"

	ordertypes "github.com/acme/go-gin-storefront/internal/domains/orders/application/types"
	"github.com/acme/go-gin-storefront/internal/domains/orders/domain"
	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
	orderworkflows "github.com/acme/go-gin-storefront/internal/durable/temporal/workflows/orders"
)

var (
	_ ports.PlacementOrchestrator = (*TemporalOrderWorkflows)(nil)
	_ ports.PlacementOrchestrator = (*InlineOrderWorkflows)(nil)
	_ ports.PlacementOrchestrator = (*InvalidatingOrderWorkflows)(nil)
)

// TemporalOrderWorkflows starts order workflows on a Temporal cluster.
type TemporalOrderWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalOrderWorkflows wires a Temporal client into the orchestrator.
func NewTemporalOrderWorkflows(c client.Client) *TemporalOrderWorkflows {
	return &TemporalOrderWorkflows{client: c, taskQueue: orderworkflows.OrderPlacementTaskQueue}
}

// PlaceOrder starts the Temporal workflow that places an order and blocks
// until the durable run completes.
func (o *TemporalOrderWorkflows) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("order-placement-%s-%s", input.Owner, traceComponent),
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.OrderPlacementWorkflow,
		orderworkflows.OrderPlacementWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		return nil, err
	}
	var order domain.Order
	if err := run.Get(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// InvalidatingOrderWorkflows decorates an orchestrator whose placement runs
// in another process. The remote service fires its own invalidator there,
// which cannot reach read views cached in this process, so the decorator
// drops the placement-affected views locally once the run succeeds.
type InvalidatingOrderWorkflows struct {
	next        ports.PlacementOrchestrator
	invalidator ports.ViewInvalidator
}

// NewInvalidatingOrderWorkflows wraps next with local view invalidation.
func NewInvalidatingOrderWorkflows(next ports.PlacementOrchestrator, invalidator ports.ViewInvalidator) *InvalidatingOrderWorkflows {
	return &InvalidatingOrderWorkflows{next: next, invalidator: invalidator}
}

// PlaceOrder delegates and, on success, invalidates the views a placement
// staleness-affects: the owner's orders, the inventory list, and the admin
// order list.
func (o *InvalidatingOrderWorkflows) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	if o == nil || o.next == nil {
		return nil, errors.New("invalidating order workflows not configured")
	}
	order, err := o.next.PlaceOrder(ctx, input)
	if err != nil {
		return nil, err
	}
	if o.invalidator != nil {
		o.invalidator.Invalidate(ctx, ports.ViewUserOrders, ports.ViewInventoryList, ports.ViewAdminOrders)
	}
	return order, nil
}

// InlineOrderWorkflows executes the service directly without Temporal, useful
// for tests or dev fallbacks.
type InlineOrderWorkflows struct {
	service ports.Service
}

// NewInlineOrderWorkflows wraps the order service for synchronous execution.
func NewInlineOrderWorkflows(service ports.Service) *InlineOrderWorkflows {
	return &InlineOrderWorkflows{service: service}
}

// PlaceOrder delegates to the application service without durable orchestration.
func (o *InlineOrderWorkflows) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline order workflows not configured")
	}
	return o.service.PlaceOrder(ctx, input)
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
