package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	inventorydomain "github.com/acme/go-gin-storefront/internal/domains/inventory/domain"
	inventoryports "github.com/acme/go-gin-storefront/internal/domains/inventory/ports"
	"github.com/acme/go-gin-storefront/internal/domains/orders/adapters/views"
	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
	apierrors "github.com/acme/go-gin-storefront/internal/shared/errors"
	"github.com/acme/go-gin-storefront/internal/shared/pagination"
)

// inventoryItem is the transport shape of one ledger row.
type inventoryItem struct {
	ProductID int64 `json:"productId"`
	Capacity  int   `json:"capacity"`
}

// InventoryAPI serves the back-office inventory listing.
type InventoryAPI struct {
	ledger    inventoryports.Ledger
	cache     *views.Cache
	responder *apierrors.Responder
}

// NewInventoryAPI creates an InventoryAPI backed by the ledger.
func NewInventoryAPI(ledger inventoryports.Ledger, cache *views.Cache) InventoryAPI {
	return InventoryAPI{ledger: ledger, cache: cache, responder: newResponder()}
}

// Get /v1/admin/inventory
// List per-product reservable capacity
func (api *InventoryAPI) ListInventory(c *gin.Context) {
	req, ok := parsePageRequest(c, api.responder)
	if !ok {
		return
	}
	key := pageKey(req)
	if api.cache != nil {
		if cached, hit := api.cache.Get(ports.ViewInventoryList, key); hit {
			c.JSON(http.StatusOK, cached)
			return
		}
	}
	ledgerPage, err := api.ledger.List(c.Request.Context(), req)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	page := pagination.Map(ledgerPage, func(inv inventorydomain.Inventory) inventoryItem {
		return inventoryItem{ProductID: inv.ProductID, Capacity: inv.Capacity}
	})
	if api.cache != nil {
		api.cache.Put(ports.ViewInventoryList, key, page)
	}
	c.JSON(http.StatusOK, page)
}
