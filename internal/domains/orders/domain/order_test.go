package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() NewOrderParams {
	return NewOrderParams{
		Number:      "ord-1",
		Owner:       "alice",
		ProductID:   7,
		ProductName: "mug",
		Quantity:    2,
		UnitPrice:   decimal.RequireFromString("10.00"),
		Address:     "1 Main St",
		PlacedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewOrder_SnapshotsTotalAndStartsPending(t *testing.T) {
	order, err := NewOrder(validParams())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("20.00")), "total = %s", order.Total)
	assert.Equal(t, []Status{StatusPending}, order.StatusHistory)
}

func TestNewOrder_RejectsInvalidInput(t *testing.T) {
	params := validParams()
	params.Quantity = 0
	_, err := NewOrder(params)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	params = validParams()
	params.Owner = "  "
	_, err = NewOrder(params)
	require.ErrorIs(t, err, ErrEmptyOwner)

	params = validParams()
	params.UnitPrice = decimal.RequireFromString("-1")
	_, err = NewOrder(params)
	require.ErrorIs(t, err, ErrNegativePrice)
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(" shipped ")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, status)

	_, err = ParseStatus("TELEPORTED")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSetStatus_RecordsHistory(t *testing.T) {
	order, err := NewOrder(validParams())
	require.NoError(t, err)

	require.NoError(t, order.SetStatus(StatusConfirmed))
	require.NoError(t, order.SetStatus(StatusShipped))
	assert.Equal(t, []Status{StatusPending, StatusConfirmed, StatusShipped}, order.StatusHistory)

	require.ErrorIs(t, order.SetStatus("BOGUS"), ErrInvalidStatus)
}

func TestCancel_RejectsDoubleCancellation(t *testing.T) {
	order, err := NewOrder(validParams())
	require.NoError(t, err)

	require.NoError(t, order.Cancel())
	assert.Equal(t, StatusCancelled, order.Status)

	err = order.Cancel()
	require.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Equal(t, []Status{StatusPending, StatusCancelled}, order.StatusHistory)
}
