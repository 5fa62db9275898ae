package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
	"github.com/mattjboland/boutique-ado/src/checkout/domain/port"
	productport "github.com/mattjboland/boutique-ado/src/products/domain/port"
)

// attachBagItems materializa los line items del snapshot sobre una orden
// ya persistida. Los dos escritores (submission y webhook) usan exactamente
// este camino, así la orden resultante es idéntica gane quien gane la
// carrera. El caller invoca UpdateTotals después.
func attachBagItems(
	ctx context.Context,
	orderRepo port.OrderRepository,
	productRepo productport.ProductRepository,
	order *entity.Order,
	snapshot entity.CartSnapshot,
) error {
	// Orden determinístico de inserción
	productIDs := make([]string, 0, len(snapshot))
	for id := range snapshot {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	for _, rawID := range productIDs {
		entry := snapshot[rawID]

		productID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q: %w", rawID, entity.ErrInvalidBag)
		}

		// Resolver el producto; si ya no existe en el catálogo falla
		// toda la materialización
		product, err := productRepo.FindByID(ctx, productID)
		if err != nil {
			return err
		}

		if entry.HasSizes() {
			sizes := make([]string, 0, len(entry.ItemsBySize))
			for size := range entry.ItemsBySize {
				sizes = append(sizes, size)
			}
			sort.Strings(sizes)

			for _, size := range sizes {
				item, err := entity.NewOrderLineItem(order.OrderNumber, product.ID, product.Price, size, entry.ItemsBySize[size])
				if err != nil {
					return err
				}
				if err := orderRepo.AddLineItem(ctx, item); err != nil {
					return err
				}
				order.AddLineItem(item)
			}
			continue
		}

		item, err := entity.NewOrderLineItem(order.OrderNumber, product.ID, product.Price, "", entry.Quantity)
		if err != nil {
			return err
		}
		if err := orderRepo.AddLineItem(ctx, item); err != nil {
			return err
		}
		order.AddLineItem(item)
	}

	return nil
}

// snapshotTotal valoriza el snapshot contra el catálogo (se usa antes de
// crear el intent, cuando todavía no existe la orden)
func snapshotTotal(ctx context.Context, productRepo productport.ProductRepository, snapshot entity.CartSnapshot) (decimal.Decimal, error) {
	productIDs := make([]string, 0, len(snapshot))
	for id := range snapshot {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	total := decimal.Zero
	for _, rawID := range productIDs {
		entry := snapshot[rawID]

		productID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid product id %q: %w", rawID, entity.ErrInvalidBag)
		}

		product, err := productRepo.FindByID(ctx, productID)
		if err != nil {
			return decimal.Zero, err
		}

		quantity := entry.Quantity
		if entry.HasSizes() {
			quantity = 0
			for _, qty := range entry.ItemsBySize {
				quantity += qty
			}
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(quantity))))
	}

	return total, nil
}
