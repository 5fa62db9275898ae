package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineItem representa un item dentro de una orden (Entity dentro del
// Aggregate). El lineitem_total se congela al crearlo: precio unitario ×
// cantidad al momento de la compra, no se recalcula si el precio cambia.
type OrderLineItem struct {
	ItemID        string          `json:"item_id"`
	OrderNumber   string          `json:"order_number"`
	ProductID     int64           `json:"product_id"`
	ProductSize   *string         `json:"product_size,omitempty"` // xs, s, m, l, xl
	Quantity      int             `json:"quantity"`
	LineitemTotal decimal.Decimal `json:"lineitem_total"`
}

// NewOrderLineItem crea un item de orden con el total congelado
func NewOrderLineItem(orderNumber string, productID int64, unitPrice decimal.Decimal, size string, quantity int) (*OrderLineItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	return &OrderLineItem{
		ItemID:        uuid.New().String(),
		OrderNumber:   orderNumber,
		ProductID:     productID,
		ProductSize:   nilIfEmpty(size),
		Quantity:      quantity,
		LineitemTotal: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}
