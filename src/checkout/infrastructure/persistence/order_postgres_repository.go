package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
)

// OrderPostgresRepository implementa OrderRepository usando PostgreSQL.
// Los escritores hacen append-and-read: nunca toman locks explícitos, la
// deduplicación se apoya en FindMatching contra la tabla durable.
type OrderPostgresRepository struct {
	db *sql.DB
}

// NewOrderPostgresRepository crea una nueva instancia del repositorio
func NewOrderPostgresRepository(db *sql.DB) *OrderPostgresRepository {
	return &OrderPostgresRepository{
		db: db,
	}
}

// Save inserta el aggregate root. El order_number ya viene generado por
// la entidad y no se toca nunca más.
func (r *OrderPostgresRepository) Save(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (
			order_number, full_name, email, phone_number,
			country, postcode, town_or_city,
			street_address1, street_address2, county,
			date, delivery_cost, order_total, grand_total,
			profile_id, stripe_pid, original_bag
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		order.OrderNumber,
		order.FullName,
		order.Email,
		order.PhoneNumber,
		order.Country,
		order.Postcode,
		order.TownOrCity,
		order.StreetAddress1,
		order.StreetAddress2,
		order.County,
		order.Date,
		order.DeliveryCost,
		order.OrderTotal,
		order.GrandTotal,
		order.ProfileID,
		order.StripePID,
		order.OriginalBag,
	).Scan(&order.ID)

	if err != nil {
		// Colisión del unique de order_number: el UUID4 hace que en la
		// práctica no pase, pero el llamador puede regenerar y reintentar
		if isUniqueViolation(err) {
			return fmt.Errorf("error saving order %s: %w", order.OrderNumber, entity.ErrDuplicateOrder)
		}
		return fmt.Errorf("error saving order: %w", err)
	}

	return nil
}

// isUniqueViolation detecta la violación de constraint unique de
// PostgreSQL (clase 23, código 23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// AddLineItem inserta un line item de una orden ya persistida
func (r *OrderPostgresRepository) AddLineItem(ctx context.Context, item *entity.OrderLineItem) error {
	query := `
		INSERT INTO order_line_items (
			item_id, order_number, product_id, product_size, quantity, lineitem_total
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		item.ItemID,
		item.OrderNumber,
		item.ProductID,
		item.ProductSize,
		item.Quantity,
		item.LineitemTotal,
	)

	if err != nil {
		return fmt.Errorf("error saving order line item: %w", err)
	}

	return nil
}

// UpdateTotals persiste los totales recalculados del aggregate.
// El order_number no se incluye: es estable una vez asignado.
func (r *OrderPostgresRepository) UpdateTotals(ctx context.Context, order *entity.Order) error {
	query := `
		UPDATE orders
		SET delivery_cost = $2, order_total = $3, grand_total = $4
		WHERE order_number = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		order.OrderNumber,
		order.DeliveryCost,
		order.OrderTotal,
		order.GrandTotal,
	)
	if err != nil {
		return fmt.Errorf("error updating order totals: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return entity.ErrOrderNotFound
	}

	return nil
}

// Delete elimina la orden y sus items (los items caen por cascade).
// Se usa como rollback cuando falla la materialización parcial.
func (r *OrderPostgresRepository) Delete(ctx context.Context, orderNumber string) error {
	query := `
		DELETE FROM orders
		WHERE order_number = $1
	`

	if _, err := r.db.ExecContext(ctx, query, orderNumber); err != nil {
		return fmt.Errorf("error deleting order: %w", err)
	}

	return nil
}

// FindByNumber busca una orden con sus items por order_number
func (r *OrderPostgresRepository) FindByNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	query := `
		SELECT id, order_number, full_name, email, phone_number,
		       country, postcode, town_or_city,
		       street_address1, street_address2, county,
		       date, delivery_cost, order_total, grand_total,
		       profile_id, stripe_pid, original_bag
		FROM orders
		WHERE order_number = $1
	`

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, orderNumber))
	if err != nil {
		return nil, err
	}

	if err := r.loadLineItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// FindMatching ejecuta el fuzzy match de reconciliación: igualdad
// case-insensitive sobre todos los campos de contacto/envío, más
// grand_total, el bag congelado y el stripe_pid. Los opcionales ausentes
// deben estar ausentes en ambos lados (IS NOT DISTINCT FROM).
func (r *OrderPostgresRepository) FindMatching(ctx context.Context, lookup *entity.OrderLookup) (*entity.Order, error) {
	query := `
		SELECT id, order_number, full_name, email, phone_number,
		       country, postcode, town_or_city,
		       street_address1, street_address2, county,
		       date, delivery_cost, order_total, grand_total,
		       profile_id, stripe_pid, original_bag
		FROM orders
		WHERE LOWER(full_name) = LOWER($1)
		  AND LOWER(email) = LOWER($2)
		  AND LOWER(phone_number) = LOWER($3)
		  AND LOWER(country) = LOWER($4)
		  AND LOWER(postcode) IS NOT DISTINCT FROM LOWER($5)
		  AND LOWER(town_or_city) = LOWER($6)
		  AND LOWER(street_address1) = LOWER($7)
		  AND LOWER(street_address2) IS NOT DISTINCT FROM LOWER($8)
		  AND LOWER(county) IS NOT DISTINCT FROM LOWER($9)
		  AND grand_total = $10
		  AND original_bag = $11
		  AND stripe_pid = $12
		ORDER BY id
		LIMIT 1
	`

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query,
		lookup.FullName,
		lookup.Email,
		lookup.PhoneNumber,
		lookup.Country,
		lookup.Postcode,
		lookup.TownOrCity,
		lookup.StreetAddress1,
		lookup.StreetAddress2,
		lookup.County,
		lookup.GrandTotal,
		lookup.OriginalBag,
		lookup.StripePID,
	))
	if err != nil {
		return nil, err
	}

	if err := r.loadLineItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// scanOrder escanea una fila de orders
func (r *OrderPostgresRepository) scanOrder(row *sql.Row) (*entity.Order, error) {
	order := &entity.Order{}
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.FullName,
		&order.Email,
		&order.PhoneNumber,
		&order.Country,
		&order.Postcode,
		&order.TownOrCity,
		&order.StreetAddress1,
		&order.StreetAddress2,
		&order.County,
		&order.Date,
		&order.DeliveryCost,
		&order.OrderTotal,
		&order.GrandTotal,
		&order.ProfileID,
		&order.StripePID,
		&order.OriginalBag,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding order: %w", err)
	}

	return order, nil
}

// loadLineItems carga los items del aggregate
func (r *OrderPostgresRepository) loadLineItems(ctx context.Context, order *entity.Order) error {
	query := `
		SELECT item_id, order_number, product_id, product_size, quantity, lineitem_total
		FROM order_line_items
		WHERE order_number = $1
		ORDER BY item_id
	`

	rows, err := r.db.QueryContext(ctx, query, order.OrderNumber)
	if err != nil {
		return fmt.Errorf("error finding order line items: %w", err)
	}
	defer rows.Close()

	var items []entity.OrderLineItem
	for rows.Next() {
		var item entity.OrderLineItem
		err := rows.Scan(
			&item.ItemID,
			&item.OrderNumber,
			&item.ProductID,
			&item.ProductSize,
			&item.Quantity,
			&item.LineitemTotal,
		)
		if err != nil {
			return fmt.Errorf("error scanning order line item: %w", err)
		}
		items = append(items, item)
	}

	order.LineItems = items

	return rows.Err()
}
