package entity

import (
	"encoding/json"
	"fmt"
)

// CartEntry representa la selección de un producto dentro del bag.
// Un producto sin talles guarda la cantidad directa; un producto con
// talles guarda un mapa talle → cantidad.
type CartEntry struct {
	Quantity    int
	ItemsBySize map[string]int
}

// HasSizes indica si la entrada usa talles
func (e CartEntry) HasSizes() bool {
	return len(e.ItemsBySize) > 0
}

// UnmarshalJSON acepta los dos formatos del bag de sesión:
// "3": 2  o  "5": {"items_by_size": {"m": 1, "l": 3}}
func (e *CartEntry) UnmarshalJSON(data []byte) error {
	var qty int
	if err := json.Unmarshal(data, &qty); err == nil {
		e.Quantity = qty
		e.ItemsBySize = nil
		return nil
	}

	var bySize struct {
		ItemsBySize map[string]int `json:"items_by_size"`
	}
	if err := json.Unmarshal(data, &bySize); err != nil {
		return ErrInvalidBag
	}
	if len(bySize.ItemsBySize) == 0 {
		return ErrInvalidBag
	}
	e.Quantity = 0
	e.ItemsBySize = bySize.ItemsBySize
	return nil
}

// MarshalJSON emite el mismo formato que el bag de sesión
func (e CartEntry) MarshalJSON() ([]byte, error) {
	if e.HasSizes() {
		return json.Marshal(map[string]map[string]int{"items_by_size": e.ItemsBySize})
	}
	return json.Marshal(e.Quantity)
}

// CartSnapshot es el bag congelado al iniciar el checkout:
// product_id → cantidad o talles. Se serializa a JSON canónico y viaja
// en la metadata del payment intent para la reconciliación.
type CartSnapshot map[string]CartEntry

// ParseCartSnapshot deserializa y valida un snapshot congelado
func ParseCartSnapshot(data []byte) (CartSnapshot, error) {
	var snapshot CartSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, ErrInvalidBag
	}
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Validate verifica que todas las cantidades sean positivas
func (s CartSnapshot) Validate() error {
	for productID, entry := range s {
		if entry.HasSizes() {
			for size, qty := range entry.ItemsBySize {
				if qty <= 0 {
					return fmt.Errorf("product %s size %s: %w", productID, size, ErrInvalidQuantity)
				}
			}
			continue
		}
		if entry.Quantity <= 0 {
			return fmt.Errorf("product %s: %w", productID, ErrInvalidQuantity)
		}
	}
	return nil
}

// CanonicalJSON serializa el snapshot con claves ordenadas.
// encoding/json ordena las claves de los mapas, por lo que dos snapshots
// iguales siempre producen el mismo texto (clave del fuzzy match).
func (s CartSnapshot) CanonicalJSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("error marshalling cart snapshot: %w", err)
	}
	return string(data), nil
}

// IsEmpty indica si el bag no tiene items
func (s CartSnapshot) IsEmpty() bool {
	return len(s) == 0
}
