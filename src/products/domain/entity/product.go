package entity

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// Product representa un producto del catálogo (colaborador externo del
// checkout: acá solo se especifica la interfaz que el checkout consume).
// El SKU es opcional en el catálogo y se guarda NULL cuando falta.
type Product struct {
	ID       int64           `json:"id"`
	SKU      *string         `json:"sku,omitempty"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	HasSizes bool            `json:"has_sizes"`
}
