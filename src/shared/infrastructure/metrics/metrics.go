package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CheckoutMetrics expone los contadores del flujo de checkout y del
// reconciliador de webhooks
type CheckoutMetrics struct {
	WebhookEvents *prometheus.CounterVec
	OrdersCreated *prometheus.CounterVec
	Confirmations *prometheus.CounterVec
}

// NewCheckoutMetrics registra los contadores en el registry global
func NewCheckoutMetrics() *CheckoutMetrics {
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boutique",
		Subsystem: "checkout",
		Name:      "webhook_events_total",
		Help:      "Total number of webhook events by kind and outcome.",
	}, []string{"kind", "outcome"})

	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boutique",
		Subsystem: "checkout",
		Name:      "orders_created_total",
		Help:      "Total number of orders created by writer path.",
	}, []string{"path"})

	confirmations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boutique",
		Subsystem: "checkout",
		Name:      "confirmations_total",
		Help:      "Total number of confirmation dispatches by result.",
	}, []string{"result"})

	prometheus.MustRegister(webhookEvents, ordersCreated, confirmations)
	return &CheckoutMetrics{
		WebhookEvents: webhookEvents,
		OrdersCreated: ordersCreated,
		Confirmations: confirmations,
	}
}

// Handler expone el endpoint de scraping
func Handler() http.Handler {
	return promhttp.Handler()
}
