package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/acme/go-gin-storefront/internal/domains/orders/adapters/http/mapper"
	"github.com/acme/go-gin-storefront/internal/domains/orders/adapters/views"
	ordertypes "github.com/acme/go-gin-storefront/internal/domains/orders/application/types"
	"github.com/acme/go-gin-storefront/internal/domains/orders/domain"
	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
	apierrors "github.com/acme/go-gin-storefront/internal/shared/errors"
	"github.com/acme/go-gin-storefront/internal/shared/pagination"
)

// identityHeader carries the already-authenticated caller identity. Request
// authentication itself is out of scope; upstream middleware owns it.
const identityHeader = "X-User-Name"

// OrderAPI wires HTTP transport with the orders bounded context service and
// workflows.
type OrderAPI struct {
	service   ports.Service
	workflows ports.PlacementOrchestrator
	cache     *views.Cache
	responder *apierrors.Responder
}

// NewOrderAPI creates an OrderAPI backed by the provided service. The cache
// is optional; when nil every read goes straight to the service.
func NewOrderAPI(service ports.Service, workflows ports.PlacementOrchestrator, cache *views.Cache) OrderAPI {
	return OrderAPI{service: service, workflows: workflows, cache: cache, responder: newResponder()}
}

// Post /v1/orders
// Place a new order
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	owner, ok := api.callerIdentity(c)
	if !ok {
		return
	}
	var payload ordermapper.PlaceOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	order, err := api.placeOrder(c.Request.Context(), ordermapper.ToPlaceOrderInput(owner, payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordermapper.FromDomainOrder(order))
}

func (api *OrderAPI) placeOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	if api.workflows != nil {
		return api.workflows.PlaceOrder(ctx, input)
	}
	return api.service.PlaceOrder(ctx, input)
}

// Get /v1/orders
// List the caller's orders
func (api *OrderAPI) ListMyOrders(c *gin.Context) {
	owner, ok := api.callerIdentity(c)
	if !ok {
		return
	}
	if cached, hit := api.cached(ports.ViewUserOrders, owner); hit {
		c.JSON(http.StatusOK, cached)
		return
	}
	orders, err := api.service.ListForOwner(c.Request.Context(), owner)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	api.store(ports.ViewUserOrders, owner, orders)
	c.JSON(http.StatusOK, orders)
}

// Post /v1/orders/:orderId/cancel
// Cancel an order and restock its quantity
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	if _, ok := api.callerIdentity(c); !ok {
		return
	}
	id, ok := api.parseIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.CancelOrder(c.Request.Context(), id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

// Get /v1/admin/orders
// List all orders for the back office
func (api *OrderAPI) ListAdminOrders(c *gin.Context) {
	req, ok := parsePageRequest(c, api.responder)
	if !ok {
		return
	}
	ownerFilter := c.Query("owner")
	key := adminOrdersKey(ownerFilter, req)
	if cached, hit := api.cached(ports.ViewAdminOrders, key); hit {
		c.JSON(http.StatusOK, cached)
		return
	}
	page, err := api.service.ListForAdmin(c.Request.Context(), ownerFilter, req)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	api.store(ports.ViewAdminOrders, key, page)
	c.JSON(http.StatusOK, page)
}

// Put /v1/admin/orders/:orderId/status
// Override an order's status without touching inventory
func (api *OrderAPI) UpdateOrderStatus(c *gin.Context) {
	id, ok := api.parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var payload ordermapper.UpdateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	order, err := api.service.UpdateStatus(c.Request.Context(), ordertypes.UpdateStatusInput{
		OrderID: id,
		Status:  payload.Status,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

func (api *OrderAPI) callerIdentity(c *gin.Context) (string, bool) {
	owner := c.GetHeader(identityHeader)
	if owner == "" {
		api.responder.Respond(c, apierrors.ErrUnauthorized.WithDetail("missing "+identityHeader+" header"))
		return "", false
	}
	return owner, true
}

func (api *OrderAPI) parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail("invalid "+name+" parameter"))
		return 0, false
	}
	return id, true
}

func (api *OrderAPI) cached(view, key string) (any, bool) {
	if api.cache == nil {
		return nil, false
	}
	return api.cache.Get(view, key)
}

func (api *OrderAPI) store(view, key string, value any) {
	if api.cache != nil {
		api.cache.Put(view, key, value)
	}
}

func adminOrdersKey(ownerFilter string, req pagination.Request) string {
	return fmt.Sprintf("owner=%s&page=%d&size=%d&sort=%s", ownerFilter, req.Page, req.Size, req.Sort)
}

func parsePageRequest(c *gin.Context, responder *apierrors.Responder) (pagination.Request, bool) {
	page, ok := intQuery(c, responder, "page")
	if !ok {
		return pagination.Request{}, false
	}
	size, ok := intQuery(c, responder, "size")
	if !ok {
		return pagination.Request{}, false
	}
	return pagination.Request{Page: page, Size: size, Sort: c.Query("sort")}.Normalize(), true
}

func intQuery(c *gin.Context, responder *apierrors.Responder, name string) (int, bool) {
	value, err := strconv.Atoi(c.DefaultQuery(name, "0"))
	if err != nil {
		responder.Respond(c, apierrors.ErrBadRequest.WithDetail("invalid "+name+" query parameter"))
		return 0, false
	}
	return value, true
}
