package httpapi

import (
	"errors"
	"strings"

	"github.com/acme/go-gin-storefront/internal/domains/orders/application"
	apierrors "github.com/acme/go-gin-storefront/internal/shared/errors"
)

// newResponder builds the Problem Details responder used by every handler,
// with the orders error taxonomy mapped onto HTTP statuses.
func newResponder() *apierrors.Responder {
	return apierrors.NewResponder("", orderServiceErrorMapper)
}

func orderServiceErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, application.ErrInsufficientInventory):
		return apierrors.ErrInsufficientStock.WithDetail(trimSentinel(err, application.ErrInsufficientInventory)), true
	case errors.Is(err, application.ErrProductNotFound),
		errors.Is(err, application.ErrInventoryNotFound),
		errors.Is(err, application.ErrOrderNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrOrderAlreadyCancelled):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrInvalidStatus),
		errors.Is(err, application.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

// trimSentinel drops the sentinel prefix so the response detail starts with
// the business message, e.g. "not enough stock for product: mug".
func trimSentinel(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}
