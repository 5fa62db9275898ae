package port

import (
	"context"

	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
)

// OrderRepository define los métodos para persistir Orders.
// Los dos escritores (submission y webhook) comparten esta interfaz: la
// exclusión mutua se logra únicamente con FindMatching contra storage
// durable, nunca con locks en memoria.
type OrderRepository interface {
	// Save inserta el aggregate root (sin items todavía)
	Save(ctx context.Context, order *entity.Order) error
	// AddLineItem inserta un line item de una orden ya persistida
	AddLineItem(ctx context.Context, item *entity.OrderLineItem) error
	// UpdateTotals persiste los totales recalculados del aggregate
	UpdateTotals(ctx context.Context, order *entity.Order) error
	// Delete elimina la orden y sus items (rollback de creación parcial)
	Delete(ctx context.Context, orderNumber string) error
	// FindByNumber busca una orden con sus items por order_number
	FindByNumber(ctx context.Context, orderNumber string) (*entity.Order, error)
	// FindMatching ejecuta el fuzzy match de reconciliación
	FindMatching(ctx context.Context, lookup *entity.OrderLookup) (*entity.Order, error)
}
