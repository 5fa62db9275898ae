package usecase

import (
	"context"

	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
	"github.com/mattjboland/boutique-ado/src/checkout/domain/port"
)

// GetOrderUseCase caso de uso para consultar una orden confirmada
type GetOrderUseCase struct {
	orderRepo port.OrderRepository
}

// NewGetOrderUseCase crea una nueva instancia del caso de uso
func NewGetOrderUseCase(orderRepo port.OrderRepository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

// Execute busca la orden con sus line items por order_number
func (uc *GetOrderUseCase) Execute(ctx context.Context, orderNumber string) (*entity.Order, error) {
	return uc.orderRepo.FindByNumber(ctx, orderNumber)
}
