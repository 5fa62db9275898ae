package entity

import "github.com/shopspring/decimal"

// EventKind es el tipo de evento del gateway, como enum cerrado con
// brazo default explícito (reemplaza el dispatch dinámico tipo→handler)
type EventKind string

const (
	EventKindPaymentSucceeded EventKind = "payment_intent.succeeded"
	EventKindPaymentFailed    EventKind = "payment_intent.payment_failed"
	EventKindUnknown          EventKind = "unknown"
)

// EventKindOf mapea el tipo crudo del evento al enum; todo lo no
// reconocido cae en el brazo default
func EventKindOf(eventType string) EventKind {
	switch eventType {
	case string(EventKindPaymentSucceeded):
		return EventKindPaymentSucceeded
	case string(EventKindPaymentFailed):
		return EventKindPaymentFailed
	default:
		return EventKindUnknown
	}
}

// ReconcileState es el estado de la máquina de reconciliación de un evento:
// RECEIVED → VERIFIED → {MATCHED | CREATED} → NOTIFIED,
// o REJECTED (firma/payload inválido), o FAILED (error de creación)
type ReconcileState string

const (
	StateReceived ReconcileState = "RECEIVED"
	StateVerified ReconcileState = "VERIFIED"
	StateMatched  ReconcileState = "MATCHED"
	StateCreated  ReconcileState = "CREATED"
	StateNotified ReconcileState = "NOTIFIED"
	StateRejected ReconcileState = "REJECTED"
	StateFailed   ReconcileState = "FAILED"
)

// OrderLookup contiene los campos del fuzzy match: igualdad case-insensitive
// sobre contacto/envío + grand_total + bag congelado + stripe_pid.
// Se usa como lookup secundario cuando el escritor primario todavía no
// persistió la orden con el intent id.
type OrderLookup struct {
	FullName       string
	Email          string
	PhoneNumber    string
	Country        string
	Postcode       *string
	TownOrCity     string
	StreetAddress1 string
	StreetAddress2 *string
	County         *string
	GrandTotal     decimal.Decimal
	OriginalBag    string
	StripePID      string
}
