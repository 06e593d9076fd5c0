package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	catalogdomain "github.com/acme/go-gin-storefront/internal/domains/catalog/domain"
	"github.com/acme/go-gin-storefront/internal/domains/orders/application"
	ordertypes "github.com/acme/go-gin-storefront/internal/domains/orders/application/types"
	"github.com/acme/go-gin-storefront/internal/domains/orders/domain"
	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
	"github.com/acme/go-gin-storefront/internal/shared/pagination"
)

const tracerName = "github.com/acme/go-gin-storefront/internal/domains/orders/adapters/observability"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder",
		trace.WithAttributes(
			attribute.String("order.product", input.ProductName),
			attribute.Int("order.quantity", input.Quantity),
		))
	defer span.End()

	s.logInfo(ctx, "placing order",
		slog.String("order.owner", input.Owner),
		slog.String("order.product", input.ProductName),
		slog.Int("order.quantity", input.Quantity))
	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		if errors.Is(err, application.ErrInsufficientInventory) {
			s.metrics.recordOversellRejection(ctx, input.ProductName)
		}
		return nil, s.handleError(ctx, span, err, "failed to place order",
			slog.String("order.product", input.ProductName))
	}
	s.metrics.recordPlaced(ctx)
	s.logInfo(ctx, "order placed",
		slog.Int64("order.id", result.ID),
		slog.String("order.number", result.Number),
		slog.String("order.total", result.Total.String()))
	return result, nil
}

func (s *Service) CancelOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CancelOrder",
		trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	s.logInfo(ctx, "cancelling order", slog.Int64("order.id", orderID))
	result, err := s.inner.CancelOrder(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel order", slog.Int64("order.id", orderID))
	}
	s.metrics.recordCancelled(ctx)
	s.logInfo(ctx, "order cancelled",
		slog.Int64("order.id", result.ID),
		slog.Int("order.restocked", result.Quantity))
	return result, nil
}

func (s *Service) UpdateStatus(ctx context.Context, input ordertypes.UpdateStatusInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus",
		trace.WithAttributes(
			attribute.Int64("order.id", input.OrderID),
			attribute.String("order.status", input.Status),
		))
	defer span.End()

	s.logInfo(ctx, "updating order status",
		slog.Int64("order.id", input.OrderID),
		slog.String("order.status", input.Status))
	result, err := s.inner.UpdateStatus(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.Int64("order.id", input.OrderID))
	}
	s.metrics.recordStatusUpdate(ctx, result.Status)
	s.logInfo(ctx, "order status updated",
		slog.Int64("order.id", result.ID),
		slog.String("order.status", string(result.Status)))
	return result, nil
}

func (s *Service) ListPrices(ctx context.Context, req pagination.Request) (pagination.Page[catalogdomain.ProductPrice], error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListPrices")
	defer span.End()

	result, err := s.inner.ListPrices(ctx, req)
	if err != nil {
		return pagination.Page[catalogdomain.ProductPrice]{}, s.handleError(ctx, span, err, "failed to list prices")
	}
	span.SetAttributes(attribute.Int("prices.count", len(result.Items)))
	return result, nil
}

func (s *Service) ListForOwner(ctx context.Context, owner string) ([]ordertypes.UserOrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListForOwner")
	defer span.End()

	result, err := s.inner.ListForOwner(ctx, owner)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list owner orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) ListForAdmin(ctx context.Context, ownerFilter string, req pagination.Request) (pagination.Page[ordertypes.AdminOrderView], error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListForAdmin")
	defer span.End()

	result, err := s.inner.ListForAdmin(ctx, ownerFilter, req)
	if err != nil {
		return pagination.Page[ordertypes.AdminOrderView]{}, s.handleError(ctx, span, err, "failed to list admin orders")
	}
	span.SetAttributes(attribute.Int64("orders.total", result.TotalItems))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	ordersPlaced       metric.Int64Counter
	ordersCancelled    metric.Int64Counter
	oversellRejections metric.Int64Counter
	statusUpdates      metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("orders.service.orders_placed",
		metric.WithDescription("Number of orders placed"))
	ordersCancelled, _ := m.Int64Counter("orders.service.orders_cancelled",
		metric.WithDescription("Number of orders cancelled"))
	oversellRejections, _ := m.Int64Counter("orders.service.oversell_rejections",
		metric.WithDescription("Number of placements rejected for insufficient stock"))
	statusUpdates, _ := m.Int64Counter("orders.service.status_updates",
		metric.WithDescription("Number of administrator status overrides"))
	return serviceMetrics{
		ordersPlaced:       ordersPlaced,
		ordersCancelled:    ordersCancelled,
		oversellRejections: oversellRejections,
		statusUpdates:      statusUpdates,
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordCancelled(ctx context.Context) {
	if m.ordersCancelled != nil {
		m.ordersCancelled.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordOversellRejection(ctx context.Context, product string) {
	if m.oversellRejections != nil {
		m.oversellRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("order.product", product)))
	}
}

func (m serviceMetrics) recordStatusUpdate(ctx context.Context, status domain.Status) {
	if m.statusUpdates != nil {
		m.statusUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

var _ ports.Service = (*Service)(nil)
