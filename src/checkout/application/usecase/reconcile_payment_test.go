package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
	"github.com/mattjboland/boutique-ado/src/checkout/infrastructure/gateway"
	productentity "github.com/mattjboland/boutique-ado/src/products/domain/entity"
	profileentity "github.com/mattjboland/boutique-ado/src/profiles/domain/entity"
)

type reconcileFixture struct {
	uc       *ReconcilePaymentUseCase
	orders   *fakeOrderRepo
	profiles *fakeProfileRepo
	notifier *fakeNotifier
}

func newReconcileFixture(t *testing.T) *reconcileFixture {
	t.Helper()

	orders := newFakeOrderRepo()
	products := &fakeProductRepo{products: map[int64]productentity.Product{
		1: {ID: 1, SKU: skuOf("pp5001"), Name: "Camiseta", Price: decimal.NewFromInt(10)},
	}}
	profiles := newFakeProfileRepo()
	notifier := &fakeNotifier{}

	uc := NewReconcilePaymentUseCase(orders, products, profiles, notifier).
		WithMatchWindow(5, time.Millisecond)

	return &reconcileFixture{uc: uc, orders: orders, profiles: profiles, notifier: notifier}
}

// testIntent arma un intent cobrado por $11.00 (item de $10 + envío $1)
// para el bag {"1":1}
func testIntent() gateway.PaymentIntent {
	return gateway.PaymentIntent{
		ID:       "pi_abc123",
		Amount:   1100,
		Currency: "usd",
		Metadata: map[string]string{
			gateway.MetadataKeyBag:      `{"1":1}`,
			gateway.MetadataKeyUsername: entity.AnonymousUser,
			gateway.MetadataKeySaveInfo: "false",
		},
		Charges: gateway.ChargeList{Data: []gateway.Charge{{
			Amount:         1100,
			BillingDetails: gateway.BillingDetails{Email: "ana@example.com"},
		}}},
		Shipping: &gateway.ShippingDetails{
			Name:  "Ana García",
			Phone: "555-1234",
			Address: gateway.Address{
				Line1:   "Av. Colón 123",
				City:    "Córdoba",
				Country: "AR",
			},
		},
	}
}

func succeededEvent(intent gateway.PaymentIntent) *gateway.PaymentEvent {
	event := &gateway.PaymentEvent{ID: "evt_1", Type: "payment_intent.succeeded"}
	event.Data.Object = intent
	return event
}

// seedMatchingOrder persiste la orden que el escritor primario habría
// creado para testIntent
func (f *reconcileFixture) seedMatchingOrder(t *testing.T) *entity.Order {
	t.Helper()

	order, err := entity.NewOrder(entity.OrderDetails{
		FullName:       "ANA GARCÍA",
		Email:          "Ana@Example.com",
		PhoneNumber:    "555-1234",
		Country:        "AR",
		TownOrCity:     "Córdoba",
		StreetAddress1: "Av. Colón 123",
		StripePID:      "pi_abc123",
		OriginalBag:    `{"1":1}`,
	})
	require.NoError(t, err)

	item, err := entity.NewOrderLineItem(order.OrderNumber, 1, decimal.NewFromInt(10), "", 1)
	require.NoError(t, err)
	order.AddLineItem(item)
	order.UpdateTotals()

	require.NoError(t, f.orders.Save(context.Background(), order))
	return order
}

func TestReconcileMatchesExistingOrderOnFirstAttempt(t *testing.T) {
	f := newReconcileFixture(t)
	existing := f.seedMatchingOrder(t)

	result, err := f.uc.Execute(context.Background(), succeededEvent(testIntent()))
	require.NoError(t, err)

	assert.Equal(t, entity.StateNotified, result.State)
	assert.True(t, result.AlreadyExisted)
	assert.Equal(t, existing.OrderNumber, result.OrderNumber)
	assert.Contains(t, result.Message, "Verified order already in database")

	assert.Equal(t, 1, f.orders.findCalls)
	assert.Equal(t, 1, f.orders.count())
	assert.Equal(t, []string{existing.OrderNumber}, f.notifier.sent)
}

func TestReconcileMatchesOrderThatAppearsMidWindow(t *testing.T) {
	f := newReconcileFixture(t)
	f.seedMatchingOrder(t)
	f.orders.matchAfter = 3

	result, err := f.uc.Execute(context.Background(), succeededEvent(testIntent()))
	require.NoError(t, err)

	assert.True(t, result.AlreadyExisted)
	assert.Equal(t, 3, f.orders.findCalls)
	assert.Equal(t, 1, f.orders.count())
}

func TestReconcileCreatesOrderWhenCheckoutNeverArrived(t *testing.T) {
	f := newReconcileFixture(t)

	result, err := f.uc.Execute(context.Background(), succeededEvent(testIntent()))
	require.NoError(t, err)

	assert.Equal(t, entity.StateNotified, result.State)
	assert.False(t, result.AlreadyExisted)
	assert.Contains(t, result.Message, "Created order in webhook handler")

	// Se agotó la ventana completa antes de crear
	assert.Equal(t, 5, f.orders.findCalls)

	order := f.orders.single()
	require.NotNil(t, order)
	assert.Equal(t, "pi_abc123", order.StripePID)
	assert.Equal(t, "ana@example.com", order.Email)
	assert.Equal(t, "Ana García", order.FullName)
	assert.Nil(t, order.Postcode)
	assert.Nil(t, order.StreetAddress2)
	assert.Equal(t, "11", order.GrandTotal.String())
	assert.Len(t, order.LineItems, 1)
	assert.Equal(t, []string{order.OrderNumber}, f.notifier.sent)
}

func TestReconcileRedeliveryIsIdempotent(t *testing.T) {
	f := newReconcileFixture(t)

	first, err := f.uc.Execute(context.Background(), succeededEvent(testIntent()))
	require.NoError(t, err)
	require.False(t, first.AlreadyExisted)

	second, err := f.uc.Execute(context.Background(), succeededEvent(testIntent()))
	require.NoError(t, err)

	assert.True(t, second.AlreadyExisted)
	assert.Equal(t, first.OrderNumber, second.OrderNumber)
	assert.Equal(t, 1, f.orders.count())
}

func TestReconcileAcknowledgesPaymentFailed(t *testing.T) {
	f := newReconcileFixture(t)

	event := succeededEvent(testIntent())
	event.Type = "payment_intent.payment_failed"

	result, err := f.uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, entity.StateVerified, result.State)
	assert.Contains(t, result.Message, "payment_intent.payment_failed")
	assert.Zero(t, f.orders.count())
}

func TestReconcileAcknowledgesUnknownEventType(t *testing.T) {
	f := newReconcileFixture(t)

	event := succeededEvent(testIntent())
	event.Type = "charge.refunded"

	result, err := f.uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, entity.StateVerified, result.State)
	assert.Zero(t, f.orders.count())
	assert.Zero(t, f.orders.findCalls)
}

func TestReconcileFailsWithoutBagMetadata(t *testing.T) {
	f := newReconcileFixture(t)

	intent := testIntent()
	delete(intent.Metadata, gateway.MetadataKeyBag)

	result, err := f.uc.Execute(context.Background(), succeededEvent(intent))
	assert.Error(t, err)
	assert.Equal(t, entity.StateFailed, result.State)
	assert.Zero(t, f.orders.count())
}

func TestReconcileFailsOnMalformedBagMetadata(t *testing.T) {
	f := newReconcileFixture(t)

	intent := testIntent()
	intent.Metadata[gateway.MetadataKeyBag] = `not json`

	result, err := f.uc.Execute(context.Background(), succeededEvent(intent))
	assert.ErrorIs(t, err, entity.ErrInvalidBag)
	assert.Equal(t, entity.StateFailed, result.State)
}

func TestReconcileDeletesPartialOrderOnMissingProduct(t *testing.T) {
	f := newReconcileFixture(t)

	intent := testIntent()
	intent.Metadata[gateway.MetadataKeyBag] = `{"99":1}`

	result, err := f.uc.Execute(context.Background(), succeededEvent(intent))
	assert.ErrorIs(t, err, entity.ErrItemUnavailable)
	assert.Equal(t, entity.StateFailed, result.State)
	assert.Zero(t, f.orders.count())
	assert.Empty(t, f.notifier.sent)
}

func TestReconcileSavesProfileDefaultsFromMetadata(t *testing.T) {
	f := newReconcileFixture(t)
	f.profiles.profiles["ana"] = &profileentity.UserProfile{ID: 7, Username: "ana"}

	intent := testIntent()
	intent.Metadata[gateway.MetadataKeyUsername] = "ana"
	intent.Metadata[gateway.MetadataKeySaveInfo] = "true"

	_, err := f.uc.Execute(context.Background(), succeededEvent(intent))
	require.NoError(t, err)

	order := f.orders.single()
	require.NotNil(t, order.ProfileID)
	assert.Equal(t, int64(7), *order.ProfileID)

	require.Len(t, f.profiles.updated, 1)
	updated := f.profiles.updated[0]
	require.NotNil(t, updated.DefaultTownOrCity)
	assert.Equal(t, "Córdoba", *updated.DefaultTownOrCity)
	assert.Nil(t, updated.DefaultPostcode)
}

func TestReconcilePropagatesNotifierFailureAfterCreate(t *testing.T) {
	f := newReconcileFixture(t)
	f.notifier.err = assert.AnError

	// El error sube al controller (500 → reentrega); la orden creada queda
	result, err := f.uc.Execute(context.Background(), succeededEvent(testIntent()))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, entity.StateCreated, result.State)
	assert.Equal(t, 1, f.orders.count())

	// La reentrega matchea la orden existente y reintenta la notificación
	f.notifier.err = nil
	redelivery, err := f.uc.Execute(context.Background(), succeededEvent(testIntent()))
	require.NoError(t, err)
	assert.Equal(t, entity.StateNotified, redelivery.State)
	assert.True(t, redelivery.AlreadyExisted)
	assert.Equal(t, 1, f.orders.count())
}

func TestReconcilePropagatesNotifierFailureAfterMatch(t *testing.T) {
	f := newReconcileFixture(t)
	existing := f.seedMatchingOrder(t)
	f.notifier.err = assert.AnError

	result, err := f.uc.Execute(context.Background(), succeededEvent(testIntent()))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, entity.StateMatched, result.State)
	assert.Equal(t, existing.OrderNumber, result.OrderNumber)
	assert.Equal(t, 1, f.orders.count())
}
