package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mattjboland/boutique-ado/src/bag"
	"github.com/mattjboland/boutique-ado/src/checkout/application/response"
	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
	"github.com/mattjboland/boutique-ado/src/checkout/infrastructure/gateway"
	productport "github.com/mattjboland/boutique-ado/src/products/domain/port"
)

// StartCheckoutUseCase caso de uso para iniciar el checkout: congela el
// bag, valoriza contra el catálogo y crea el payment intent en el gateway
type StartCheckoutUseCase struct {
	bagStore    *bag.Store
	productRepo productport.ProductRepository
	client      *gateway.PaymentIntentClient
	apiKey      string
	publicKey   string
	currency    string
}

// NewStartCheckoutUseCase crea una nueva instancia del caso de uso.
// La public key viaja en la respuesta: el cliente la necesita para
// confirmar el pago contra el gateway.
func NewStartCheckoutUseCase(
	bagStore *bag.Store,
	productRepo productport.ProductRepository,
	client *gateway.PaymentIntentClient,
	apiKey string,
	publicKey string,
	currency string,
) *StartCheckoutUseCase {
	return &StartCheckoutUseCase{
		bagStore:    bagStore,
		productRepo: productRepo,
		client:      client,
		apiKey:      apiKey,
		publicKey:   publicKey,
		currency:    currency,
	}
}

// Execute inicia el checkout de una sesión.
// 1. Cargar el bag de la sesión
// 2. Valorizar contra el catálogo y derivar envío
// 3. Crear el intent con la metadata de correlación ya adjunta
// La metadata (bag congelado, username, save_info) se adjunta en la
// creación misma del intent: si la red muere antes de confirmar, el pago
// igual llega al webhook con todo lo necesario para reconciliar.
func (uc *StartCheckoutUseCase) Execute(ctx context.Context, sessionID, username string) (*response.StartCheckoutResponse, error) {
	// PASO 1: Bag de la sesión
	snapshot, err := uc.bagStore.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, bag.ErrBagNotFound) {
			return nil, entity.ErrEmptyBag
		}
		return nil, fmt.Errorf("error loading session bag: %w", err)
	}
	if snapshot.IsEmpty() {
		return nil, entity.ErrEmptyBag
	}

	// PASO 2: Totales con la misma regla de envío que la orden final
	orderTotal, err := snapshotTotal(ctx, uc.productRepo, snapshot)
	if err != nil {
		return nil, err
	}
	deliveryCost := entity.ComputeDeliveryCost(orderTotal)
	grandTotal := orderTotal.Add(deliveryCost)

	freeDeliveryDelta := entity.FreeDeliveryThreshold.Sub(orderTotal)
	if freeDeliveryDelta.IsNegative() {
		freeDeliveryDelta = decimal.Zero
	}

	// PASO 3: Intent por el grand total en unidades menores
	originalBag, err := snapshot.CanonicalJSON()
	if err != nil {
		return nil, err
	}
	if username == "" {
		username = entity.AnonymousUser
	}

	metadata := map[string]string{
		gateway.MetadataKeyBag:      originalBag,
		gateway.MetadataKeyUsername: username,
		gateway.MetadataKeySaveInfo: strconv.FormatBool(false),
	}

	amount := grandTotal.Shift(2).Round(0).IntPart()
	intent, err := uc.client.CreateIntent(uc.apiKey, amount, uc.currency, metadata)
	if err != nil {
		return nil, fmt.Errorf("error creating payment intent: %w", err)
	}

	return &response.StartCheckoutResponse{
		ClientSecret:      intent.ClientSecret,
		StripePublicKey:   uc.publicKey,
		OrderTotal:        orderTotal,
		DeliveryCost:      deliveryCost,
		GrandTotal:        grandTotal,
		FreeDeliveryDelta: freeDeliveryDelta,
	}, nil
}
