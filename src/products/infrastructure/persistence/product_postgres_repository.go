package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mattjboland/boutique-ado/src/products/domain/entity"
)

// ProductPostgresRepository implementa ProductRepository usando PostgreSQL
type ProductPostgresRepository struct {
	db *sql.DB
}

// NewProductPostgresRepository crea una nueva instancia del repositorio
func NewProductPostgresRepository(db *sql.DB) *ProductPostgresRepository {
	return &ProductPostgresRepository{
		db: db,
	}
}

// FindByID busca un producto por su ID
func (r *ProductPostgresRepository) FindByID(ctx context.Context, productID int64) (*entity.Product, error) {
	query := `
		SELECT id, sku, name, price, has_sizes
		FROM products
		WHERE id = $1
	`

	product := &entity.Product{}
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.Price,
		&product.HasSizes,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding product: %w", err)
	}

	return product, nil
}
