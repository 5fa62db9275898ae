package response

import "github.com/shopspring/decimal"

// StartCheckoutResponse representa los datos para iniciar el pago en el
// cliente: el client_secret del intent recién creado, la public key del
// gateway y los totales
type StartCheckoutResponse struct {
	ClientSecret      string          `json:"client_secret"`
	StripePublicKey   string          `json:"stripe_public_key"`
	OrderTotal        decimal.Decimal `json:"order_total"`
	DeliveryCost      decimal.Decimal `json:"delivery_cost"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
	FreeDeliveryDelta decimal.Decimal `json:"free_delivery_delta"`
}

// CheckoutSubmitResponse representa la respuesta de un checkout exitoso:
// el número de orden y la referencia de éxito para el redirect
type CheckoutSubmitResponse struct {
	OrderNumber string          `json:"order_number"`
	RedirectURL string          `json:"redirect_url"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// WebhookAck representa la respuesta al gateway por un evento procesado
type WebhookAck struct {
	Message string `json:"message"`
	State   string `json:"state"`
}
