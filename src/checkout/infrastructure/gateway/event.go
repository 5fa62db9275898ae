package gateway

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Claves de la metadata de correlación adjunta al payment intent
const (
	MetadataKeyBag      = "bag"
	MetadataKeySaveInfo = "save_info"
	MetadataKeyUsername = "username"
)

// PaymentEvent representa un evento firmado que el gateway entrega por
// webhook (entrega at-least-once: el mismo evento puede llegar N veces)
type PaymentEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object PaymentIntent `json:"object"`
	} `json:"data"`
}

// PaymentIntent representa el intent del gateway con su metadata de
// correlación y los datos del cargo
type PaymentIntent struct {
	ID           string            `json:"id"`
	Amount       int64             `json:"amount"` // unidades menores de la moneda
	Currency     string            `json:"currency"`
	ClientSecret string            `json:"client_secret,omitempty"`
	Metadata     map[string]string `json:"metadata"`
	Charges      ChargeList        `json:"charges"`
	Shipping     *ShippingDetails  `json:"shipping,omitempty"`
}

// ChargeList es la lista de cargos asociados al intent
type ChargeList struct {
	Data []Charge `json:"data"`
}

// Charge representa el cargo efectivamente cobrado
type Charge struct {
	Amount         int64          `json:"amount"` // unidades menores
	BillingDetails BillingDetails `json:"billing_details"`
}

// BillingDetails contiene los datos de facturación del cargo
type BillingDetails struct {
	Email string `json:"email"`
}

// ShippingDetails contiene los datos de envío confirmados con el pago
type ShippingDetails struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Address Address `json:"address"`
}

// Address es la dirección de envío; los subcampos pueden venir como
// string vacío y deben normalizarse a ausente antes de persistir
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	County     string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

// ParseEvent deserializa el payload crudo de un webhook
func ParseEvent(payload []byte) (*PaymentEvent, error) {
	var event PaymentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ErrMalformedPayload
	}
	if event.Type == "" {
		return nil, ErrMalformedPayload
	}
	return &event, nil
}

// ChargedAmount retorna el monto cobrado convertido de unidades menores
// a decimal con 2 decimales
func (i *PaymentIntent) ChargedAmount() decimal.Decimal {
	amount := i.Amount
	if len(i.Charges.Data) > 0 {
		amount = i.Charges.Data[0].Amount
	}
	return decimal.New(amount, -2).Round(2)
}

// BillingEmail retorna el email de facturación del primer cargo
func (i *PaymentIntent) BillingEmail() string {
	if len(i.Charges.Data) > 0 {
		return i.Charges.Data[0].BillingDetails.Email
	}
	return ""
}
