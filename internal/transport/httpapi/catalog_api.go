package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acme/go-gin-storefront/internal/domains/orders/adapters/views"
	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
	apierrors "github.com/acme/go-gin-storefront/internal/shared/errors"
	"github.com/acme/go-gin-storefront/internal/shared/pagination"
)

// CatalogAPI serves the public product price listing.
type CatalogAPI struct {
	service   ports.Service
	cache     *views.Cache
	responder *apierrors.Responder
}

// NewCatalogAPI creates a CatalogAPI backed by the order service facade.
func NewCatalogAPI(service ports.Service, cache *views.Cache) CatalogAPI {
	return CatalogAPI{service: service, cache: cache, responder: newResponder()}
}

// Get /v1/products/prices
// List product names and current prices
func (api *CatalogAPI) ListPrices(c *gin.Context) {
	req, ok := parsePageRequest(c, api.responder)
	if !ok {
		return
	}
	key := pageKey(req)
	if api.cache != nil {
		if cached, hit := api.cache.Get(ports.ViewProductPrices, key); hit {
			c.JSON(http.StatusOK, cached)
			return
		}
	}
	page, err := api.service.ListPrices(c.Request.Context(), req)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	if api.cache != nil {
		api.cache.Put(ports.ViewProductPrices, key, page)
	}
	c.JSON(http.StatusOK, page)
}

func pageKey(req pagination.Request) string {
	return fmt.Sprintf("page=%d&size=%d&sort=%s", req.Page, req.Size, req.Sort)
}
