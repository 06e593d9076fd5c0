// Package httpapi exposes the storefront order system over HTTP with gin.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	inventoryports "github.com/acme/go-gin-storefront/internal/domains/inventory/ports"
	"github.com/acme/go-gin-storefront/internal/domains/orders/adapters/views"
	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
)

// Handlers bundles the collaborators behind the HTTP surface.
type Handlers struct {
	Orders    ports.Service
	Workflows ports.PlacementOrchestrator
	Ledger    inventoryports.Ledger
	Cache     *views.Cache
	// Middleware runs before every route, after recovery.
	Middleware []gin.HandlerFunc
}

// NewRouter builds the gin engine with all storefront routes registered.
func NewRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(h.Middleware...)

	orderAPI := NewOrderAPI(h.Orders, h.Workflows, h.Cache)
	catalogAPI := NewCatalogAPI(h.Orders, h.Cache)
	inventoryAPI := NewInventoryAPI(h.Ledger, h.Cache)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		v1.GET("/products/prices", catalogAPI.ListPrices)

		v1.POST("/orders", orderAPI.PlaceOrder)
		v1.GET("/orders", orderAPI.ListMyOrders)
		v1.POST("/orders/:orderId/cancel", orderAPI.CancelOrder)

		admin := v1.Group("/admin")
		{
			admin.GET("/orders", orderAPI.ListAdminOrders)
			admin.PUT("/orders/:orderId/status", orderAPI.UpdateOrderStatus)
			admin.GET("/inventory", inventoryAPI.ListInventory)
		}
	}

	return router
}
