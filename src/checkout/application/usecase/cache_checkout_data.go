package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mattjboland/boutique-ado/src/bag"
	"github.com/mattjboland/boutique-ado/src/checkout/application/request"
	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
	"github.com/mattjboland/boutique-ado/src/checkout/infrastructure/gateway"
)

// CacheCheckoutDataUseCase caso de uso del side-channel previo a la
// confirmación: refresca la metadata de correlación del intent con el bag
// vigente y la decisión de save_info del usuario
type CacheCheckoutDataUseCase struct {
	bagStore *bag.Store
	client   *gateway.PaymentIntentClient
	apiKey   string
}

// NewCacheCheckoutDataUseCase crea una nueva instancia del caso de uso
func NewCacheCheckoutDataUseCase(bagStore *bag.Store, client *gateway.PaymentIntentClient, apiKey string) *CacheCheckoutDataUseCase {
	return &CacheCheckoutDataUseCase{
		bagStore: bagStore,
		client:   client,
		apiKey:   apiKey,
	}
}

// Execute adjunta la metadata al intent referenciado por el client_secret.
// Tiene que completarse antes de confirmar el pago en el cliente; si falla,
// el cliente aborta la confirmación.
func (uc *CacheCheckoutDataUseCase) Execute(ctx context.Context, sessionID string, req *request.CacheCheckoutDataRequest) error {
	intentID, err := gateway.SplitClientSecret(req.ClientSecret)
	if err != nil {
		return err
	}

	snapshot, err := uc.bagStore.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, bag.ErrBagNotFound) {
			return entity.ErrEmptyBag
		}
		return fmt.Errorf("error loading session bag: %w", err)
	}
	if snapshot.IsEmpty() {
		return entity.ErrEmptyBag
	}

	originalBag, err := snapshot.CanonicalJSON()
	if err != nil {
		return err
	}

	username := req.Username
	if username == "" {
		username = entity.AnonymousUser
	}

	metadata := map[string]string{
		gateway.MetadataKeyBag:      originalBag,
		gateway.MetadataKeyUsername: username,
		gateway.MetadataKeySaveInfo: strconv.FormatBool(req.SaveInfo),
	}

	if _, err := uc.client.ModifyIntent(uc.apiKey, intentID, metadata); err != nil {
		return fmt.Errorf("error attaching metadata to intent %s: %w", intentID, err)
	}

	return nil
}
