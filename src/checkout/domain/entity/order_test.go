package entity

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() OrderDetails {
	return OrderDetails{
		FullName:       "Ana García",
		Email:          "ana@example.com",
		PhoneNumber:    "555-1234",
		Country:        "AR",
		TownOrCity:     "Córdoba",
		StreetAddress1: "Av. Colón 123",
		StripePID:      "pi_abc123",
		OriginalBag:    `{"1":2}`,
	}
}

func TestNewOrderGeneratesOpaqueOrderNumber(t *testing.T) {
	order, err := NewOrder(validDetails())
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{32}$`), order.OrderNumber)

	other, err := NewOrder(validDetails())
	require.NoError(t, err)
	assert.NotEqual(t, order.OrderNumber, other.OrderNumber)
}

func TestNewOrderValidatesRequiredFields(t *testing.T) {
	missing := validDetails()
	missing.Email = ""
	_, err := NewOrder(missing)
	assert.ErrorIs(t, err, ErrMissingContactInfo)

	missing = validDetails()
	missing.StreetAddress1 = ""
	_, err = NewOrder(missing)
	assert.ErrorIs(t, err, ErrMissingShippingInfo)

	missing = validDetails()
	missing.StripePID = ""
	_, err = NewOrder(missing)
	assert.ErrorIs(t, err, ErrStripePIDRequired)
}

func TestNewOrderNormalizesOptionalFields(t *testing.T) {
	details := validDetails()
	details.Postcode = ""
	details.StreetAddress2 = ""
	details.County = "Córdoba"

	order, err := NewOrder(details)
	require.NoError(t, err)

	assert.Nil(t, order.Postcode)
	assert.Nil(t, order.StreetAddress2)
	require.NotNil(t, order.County)
	assert.Equal(t, "Córdoba", *order.County)
}

func TestUpdateTotalsBelowFreeDeliveryThreshold(t *testing.T) {
	order, err := NewOrder(validDetails())
	require.NoError(t, err)

	item, err := NewOrderLineItem(order.OrderNumber, 1, decimal.NewFromInt(20), "", 2)
	require.NoError(t, err)
	order.AddLineItem(item)
	order.UpdateTotals()

	assert.True(t, order.OrderTotal.Equal(decimal.NewFromInt(40)), "order total: %s", order.OrderTotal)
	assert.True(t, order.DeliveryCost.Equal(decimal.NewFromInt(4)), "delivery: %s", order.DeliveryCost)
	assert.True(t, order.GrandTotal.Equal(decimal.NewFromInt(44)), "grand total: %s", order.GrandTotal)
}

func TestUpdateTotalsAtFreeDeliveryThreshold(t *testing.T) {
	order, err := NewOrder(validDetails())
	require.NoError(t, err)

	item, err := NewOrderLineItem(order.OrderNumber, 1, decimal.NewFromInt(30), "", 2)
	require.NoError(t, err)
	order.AddLineItem(item)
	order.UpdateTotals()

	assert.True(t, order.OrderTotal.Equal(decimal.NewFromInt(60)))
	assert.True(t, order.DeliveryCost.IsZero(), "delivery should be free at %s", order.OrderTotal)
	assert.True(t, order.GrandTotal.Equal(decimal.NewFromInt(60)))
}

func TestUpdateTotalsIsIdempotent(t *testing.T) {
	order, err := NewOrder(validDetails())
	require.NoError(t, err)

	item, err := NewOrderLineItem(order.OrderNumber, 1, decimal.NewFromFloat(12.50), "m", 1)
	require.NoError(t, err)
	order.AddLineItem(item)

	order.UpdateTotals()
	first := order.GrandTotal
	order.UpdateTotals()

	assert.True(t, order.GrandTotal.Equal(first))
}

func TestFreeDeliveryDelta(t *testing.T) {
	order, err := NewOrder(validDetails())
	require.NoError(t, err)

	item, err := NewOrderLineItem(order.OrderNumber, 1, decimal.NewFromInt(45), "", 1)
	require.NoError(t, err)
	order.AddLineItem(item)
	order.UpdateTotals()

	assert.True(t, order.FreeDeliveryDelta().Equal(decimal.NewFromInt(5)))

	more, err := NewOrderLineItem(order.OrderNumber, 2, decimal.NewFromInt(10), "", 1)
	require.NoError(t, err)
	order.AddLineItem(more)
	order.UpdateTotals()

	assert.True(t, order.FreeDeliveryDelta().IsZero())
}

func TestNewOrderLineItemFreezesTotal(t *testing.T) {
	item, err := NewOrderLineItem("ABC", 7, decimal.NewFromFloat(9.99), "xl", 3)
	require.NoError(t, err)

	assert.True(t, item.LineitemTotal.Equal(decimal.NewFromFloat(29.97)))
	require.NotNil(t, item.ProductSize)
	assert.Equal(t, "xl", *item.ProductSize)
	assert.NotEmpty(t, item.ItemID)
}

func TestNewOrderLineItemRejectsNonPositiveQuantity(t *testing.T) {
	_, err := NewOrderLineItem("ABC", 7, decimal.NewFromInt(10), "", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewOrderLineItem("ABC", 7, decimal.NewFromInt(10), "", -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
