package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
)

// Topic de órdenes confirmadas para los consumidores internos
// (fulfillment, analítica)
const OrderConfirmedTopic = "checkout.order.confirmed"

// OrderConfirmedEvent es el envelope que viaja por el broker cuando una
// orden queda confirmada
type OrderConfirmedEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	OrderNumber string    `json:"order_number"`
	Email       string    `json:"email"`
	GrandTotal  string    `json:"grand_total"`
	TotalItems  int       `json:"total_items"`
	StripePID   string    `json:"stripe_pid"`
}

// EventPublisher publica eventos de orden confirmada en Kafka.
// Con brokers vacíos queda deshabilitado y las publicaciones son no-op:
// el servicio funciona sin broker en desarrollo.
type EventPublisher struct {
	writer *kafka.Writer
}

// NewEventPublisher crea el publisher a partir de la lista de brokers
// separada por comas; retorna uno deshabilitado si la lista está vacía
func NewEventPublisher(brokersCSV string) *EventPublisher {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}

	if len(brokers) == 0 {
		return &EventPublisher{}
	}

	return &EventPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        OrderConfirmedTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Enabled indica si hay broker configurado
func (p *EventPublisher) Enabled() bool {
	return p.writer != nil
}

// PublishOrderConfirmed publica el evento de la orden; la key es el
// order_number para que los redeliveries caigan en la misma partición
func (p *EventPublisher) PublishOrderConfirmed(ctx context.Context, order *entity.Order) error {
	if !p.Enabled() {
		return nil
	}

	event := OrderConfirmedEvent{
		EventID:     uuid.New().String(),
		EventType:   "order.confirmed",
		OccurredAt:  time.Now().UTC(),
		OrderNumber: order.OrderNumber,
		Email:       order.Email,
		GrandTotal:  order.GrandTotal.StringFixed(2),
		TotalItems:  order.TotalItems(),
		StripePID:   order.StripePID,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshalling order confirmed event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.OrderNumber),
		Value: data,
		Time:  time.Now().UTC(),
	})
}

// Close cierra el writer subyacente
func (p *EventPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
