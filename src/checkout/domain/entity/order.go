package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Umbral de envío gratis y porcentaje de envío estándar
var (
	FreeDeliveryThreshold      = decimal.NewFromInt(50)
	StandardDeliveryPercentage = decimal.NewFromInt(10)
)

// AnonymousUser es el sentinel que viaja en la metadata del intent
// cuando el checkout lo hace un invitado
const AnonymousUser = "AnonymousUser"

// Order representa una compra persistida (Aggregate Root).
// El order_number es opaco, único y permanente: se genera una sola vez
// en la creación y nunca se regenera en updates posteriores.
type Order struct {
	ID             int64           `json:"-"`
	OrderNumber    string          `json:"order_number"`
	FullName       string          `json:"full_name"`
	Email          string          `json:"email"`
	PhoneNumber    string          `json:"phone_number"`
	Country        string          `json:"country"`
	Postcode       *string         `json:"postcode,omitempty"`
	TownOrCity     string          `json:"town_or_city"`
	StreetAddress1 string          `json:"street_address1"`
	StreetAddress2 *string         `json:"street_address2,omitempty"`
	County         *string         `json:"county,omitempty"`
	Date           time.Time       `json:"date"`
	DeliveryCost   decimal.Decimal `json:"delivery_cost"`
	OrderTotal     decimal.Decimal `json:"order_total"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	ProfileID      *int64          `json:"profile_id,omitempty"`
	StripePID      string          `json:"stripe_pid"`
	OriginalBag    string          `json:"original_bag"`
	LineItems      []OrderLineItem `json:"line_items"`
}

// OrderDetails contiene los datos de contacto y envío para crear una orden.
// Los campos opcionales llegan como string y se normalizan: vacío → ausente.
type OrderDetails struct {
	FullName       string
	Email          string
	PhoneNumber    string
	Country        string
	Postcode       string
	TownOrCity     string
	StreetAddress1 string
	StreetAddress2 string
	County         string
	ProfileID      *int64
	StripePID      string
	OriginalBag    string
}

// NewOrder crea una nueva orden (DDD Aggregate Root) con order_number generado
func NewOrder(details OrderDetails) (*Order, error) {
	// Validaciones básicas
	if details.FullName == "" || details.Email == "" || details.PhoneNumber == "" {
		return nil, ErrMissingContactInfo
	}
	if details.Country == "" || details.TownOrCity == "" || details.StreetAddress1 == "" {
		return nil, ErrMissingShippingInfo
	}
	if details.StripePID == "" {
		return nil, ErrStripePIDRequired
	}

	return &Order{
		OrderNumber:    generateOrderNumber(),
		FullName:       details.FullName,
		Email:          details.Email,
		PhoneNumber:    details.PhoneNumber,
		Country:        details.Country,
		Postcode:       nilIfEmpty(details.Postcode),
		TownOrCity:     details.TownOrCity,
		StreetAddress1: details.StreetAddress1,
		StreetAddress2: nilIfEmpty(details.StreetAddress2),
		County:         nilIfEmpty(details.County),
		Date:           time.Now().UTC(),
		DeliveryCost:   decimal.Zero,
		OrderTotal:     decimal.Zero,
		GrandTotal:     decimal.Zero,
		ProfileID:      details.ProfileID,
		StripePID:      details.StripePID,
		OriginalBag:    details.OriginalBag,
	}, nil
}

// AddLineItem agrega un item a la orden (DDD: modificar aggregate).
// El caller es responsable de invocar UpdateTotals después de mutar items.
func (o *Order) AddLineItem(item *OrderLineItem) {
	o.LineItems = append(o.LineItems, *item)
}

// UpdateTotals recalcula order_total, delivery_cost y grand_total a partir
// de los line items. Reemplaza el recálculo implícito por señales: quien
// muta los items invoca esto explícitamente, el flujo de datos queda visible.
func (o *Order) UpdateTotals() {
	total := decimal.Zero
	for _, item := range o.LineItems {
		total = total.Add(item.LineitemTotal)
	}
	o.OrderTotal = total
	o.DeliveryCost = ComputeDeliveryCost(total)
	o.GrandTotal = o.OrderTotal.Add(o.DeliveryCost)
}

// ComputeDeliveryCost deriva el costo de envío: 0 si el total alcanza el
// umbral de envío gratis, si no el porcentaje estándar sobre el total
func ComputeDeliveryCost(orderTotal decimal.Decimal) decimal.Decimal {
	if orderTotal.GreaterThanOrEqual(FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return orderTotal.Mul(StandardDeliveryPercentage).Div(decimal.NewFromInt(100)).Round(2)
}

// FreeDeliveryDelta retorna cuánto falta para el envío gratis (0 si ya aplica)
func (o *Order) FreeDeliveryDelta() decimal.Decimal {
	if o.OrderTotal.GreaterThanOrEqual(FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return FreeDeliveryThreshold.Sub(o.OrderTotal)
}

// TotalItems retorna el número total de line items
func (o *Order) TotalItems() int {
	return len(o.LineItems)
}

// generateOrderNumber genera un número de orden opaco: UUID4 en hex mayúscula
func generateOrderNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
}

// nilIfEmpty normaliza los campos opcionales: string vacío se guarda como
// ausente, nunca como ""
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
