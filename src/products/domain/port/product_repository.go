package port

import (
	"context"

	"github.com/mattjboland/boutique-ado/src/products/domain/entity"
)

// ProductRepository define la resolución de productos del catálogo.
// Retorna ErrProductNotFound si el producto ya no existe (el bag puede
// referenciar un producto borrado entre el checkout y la redención).
type ProductRepository interface {
	FindByID(ctx context.Context, productID int64) (*entity.Product, error)
}
