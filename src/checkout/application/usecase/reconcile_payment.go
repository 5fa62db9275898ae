package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
	"github.com/mattjboland/boutique-ado/src/checkout/domain/port"
	"github.com/mattjboland/boutique-ado/src/checkout/infrastructure/gateway"
	productentity "github.com/mattjboland/boutique-ado/src/products/domain/entity"
	productport "github.com/mattjboland/boutique-ado/src/products/domain/port"
	profileentity "github.com/mattjboland/boutique-ado/src/profiles/domain/entity"
	profileport "github.com/mattjboland/boutique-ado/src/profiles/domain/port"
)

// Ventana de espera al escritor primario antes de asumir que el checkout
// nunca llegó a la base
const (
	defaultMatchAttempts = 5
	defaultMatchBackoff  = 1 * time.Second
)

// ReconcileResult es el resultado de procesar un evento del gateway
type ReconcileResult struct {
	State          entity.ReconcileState
	OrderNumber    string
	AlreadyExisted bool
	Message        string
}

// ReconcilePaymentUseCase caso de uso del reconciliador de pagos (camino
// secundario de creación de la orden, asíncrono vía webhook).
// Garantiza que todo pago confirmado termina con exactamente una orden,
// aunque el checkout del cliente haya muerto a mitad de camino.
type ReconcilePaymentUseCase struct {
	orderRepo   port.OrderRepository
	productRepo productport.ProductRepository
	profileRepo profileport.ProfileRepository
	notifier    port.OrderNotifier

	matchAttempts int
	matchBackoff  time.Duration
}

// NewReconcilePaymentUseCase crea una nueva instancia del caso de uso
func NewReconcilePaymentUseCase(
	orderRepo port.OrderRepository,
	productRepo productport.ProductRepository,
	profileRepo profileport.ProfileRepository,
	notifier port.OrderNotifier,
) *ReconcilePaymentUseCase {
	return &ReconcilePaymentUseCase{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		profileRepo:   profileRepo,
		notifier:      notifier,
		matchAttempts: defaultMatchAttempts,
		matchBackoff:  defaultMatchBackoff,
	}
}

// WithMatchWindow ajusta la ventana de reintentos del fuzzy match
// (los tests la reducen para no dormir de verdad)
func (uc *ReconcilePaymentUseCase) WithMatchWindow(attempts int, backoff time.Duration) *ReconcilePaymentUseCase {
	uc.matchAttempts = attempts
	uc.matchBackoff = backoff
	return uc
}

// Execute procesa un evento ya verificado del gateway. La entrega es
// at-least-once: el mismo evento puede llegar N veces y el resultado
// tiene que ser el mismo.
func (uc *ReconcilePaymentUseCase) Execute(ctx context.Context, event *gateway.PaymentEvent) (*ReconcileResult, error) {
	switch entity.EventKindOf(event.Type) {
	case entity.EventKindPaymentSucceeded:
		return uc.reconcileSucceeded(ctx, event)

	case entity.EventKindPaymentFailed:
		// El pago falló: no hay orden que crear, solo se confirma la
		// recepción al gateway
		log.Printf("🔄 Payment failed for intent %s", event.Data.Object.ID)
		return &ReconcileResult{
			State:   entity.StateVerified,
			Message: fmt.Sprintf("Webhook received: %s", event.Type),
		}, nil

	default:
		// Brazo default explícito: los tipos no reconocidos se confirman
		// sin procesar para que el gateway no los reintente
		log.Printf("🔄 Unhandled webhook event type %s", event.Type)
		return &ReconcileResult{
			State:   entity.StateVerified,
			Message: fmt.Sprintf("Webhook received: %s", event.Type),
		}, nil
	}
}

// reconcileSucceeded implementa la reconciliación de un pago confirmado:
// 1. Reconstruir el bag congelado desde la metadata del intent
// 2. Buscar la orden del escritor primario (fuzzy match con reintentos)
// 3. Si aparece → verificar y notificar
// 4. Si no aparece → crear la orden desde los datos del evento
func (uc *ReconcilePaymentUseCase) reconcileSucceeded(ctx context.Context, event *gateway.PaymentEvent) (*ReconcileResult, error) {
	intent := event.Data.Object

	// PASO 1: La metadata de correlación viaja en el intent desde su
	// creación; sin ella el evento no es reconciliable
	rawBag, ok := intent.Metadata[gateway.MetadataKeyBag]
	if !ok || rawBag == "" {
		return &ReconcileResult{
			State:   entity.StateFailed,
			Message: "missing bag metadata on intent",
		}, fmt.Errorf("intent %s: %w", intent.ID, entity.ErrInvalidBag)
	}

	snapshot, err := entity.ParseCartSnapshot([]byte(rawBag))
	if err != nil {
		return &ReconcileResult{
			State:   entity.StateFailed,
			Message: "malformed bag metadata on intent",
		}, fmt.Errorf("intent %s: %w", intent.ID, err)
	}

	originalBag, err := snapshot.CanonicalJSON()
	if err != nil {
		return &ReconcileResult{State: entity.StateFailed}, err
	}

	lookup := buildLookup(&intent, originalBag)

	// PASO 2: Ventana de gracia para el escritor primario. Solo la
	// ausencia de match reintenta; un error de infraestructura corta.
	order, err := uc.findWithRetry(ctx, lookup)
	if err != nil && !errors.Is(err, entity.ErrOrderNotFound) {
		return &ReconcileResult{State: entity.StateFailed}, fmt.Errorf("error matching order for intent %s: %w", intent.ID, err)
	}

	// PASO 3: El checkout del cliente ganó la carrera; la orden ya está.
	// El fallo de notificación se propaga: el 500 resultante hace que el
	// gateway reentregue y el match lo vuelve idempotente.
	if order != nil {
		result := &ReconcileResult{
			State:          entity.StateMatched,
			OrderNumber:    order.OrderNumber,
			AlreadyExisted: true,
			Message:        fmt.Sprintf("Webhook received: %s | SUCCESS: Verified order already in database", event.Type),
		}
		if err := uc.notifier.SendConfirmation(ctx, order); err != nil {
			return result, fmt.Errorf("error sending confirmation for order %s: %w", order.OrderNumber, err)
		}
		result.State = entity.StateNotified
		return result, nil
	}

	// PASO 4: El checkout nunca llegó; el evento es la única fuente de
	// verdad y la orden se crea desde él
	order, err = uc.createFromEvent(ctx, &intent, snapshot, originalBag)
	if err != nil {
		return &ReconcileResult{State: entity.StateFailed}, err
	}

	result := &ReconcileResult{
		State:       entity.StateCreated,
		OrderNumber: order.OrderNumber,
		Message:     fmt.Sprintf("Webhook received: %s | SUCCESS: Created order in webhook handler", event.Type),
	}
	if err := uc.notifier.SendConfirmation(ctx, order); err != nil {
		// La orden ya existe; la reentrega la va a encontrar por match y
		// solo reintenta la notificación
		return result, fmt.Errorf("error sending confirmation for order %s: %w", order.OrderNumber, err)
	}
	result.State = entity.StateNotified
	return result, nil
}

// findWithRetry ejecuta el fuzzy match hasta matchAttempts veces con
// matchBackoff entre intentos, respetando la cancelación del contexto
func (uc *ReconcilePaymentUseCase) findWithRetry(ctx context.Context, lookup *entity.OrderLookup) (*entity.Order, error) {
	var lastErr error

	for attempt := 1; attempt <= uc.matchAttempts; attempt++ {
		order, err := uc.orderRepo.FindMatching(ctx, lookup)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, entity.ErrOrderNotFound) {
			return nil, err
		}
		lastErr = err

		if attempt < uc.matchAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(uc.matchBackoff):
			}
		}
	}

	return nil, lastErr
}

// createFromEvent materializa la orden desde los datos del evento.
// Si la creación falla a mitad de camino la orden parcial se elimina y el
// error se propaga para que el gateway reintente la entrega.
func (uc *ReconcilePaymentUseCase) createFromEvent(ctx context.Context, intent *gateway.PaymentIntent, snapshot entity.CartSnapshot, originalBag string) (*entity.Order, error) {
	if intent.Shipping == nil {
		return nil, fmt.Errorf("intent %s has no shipping details: %w", intent.ID, entity.ErrMissingShippingInfo)
	}
	shipping := intent.Shipping

	// Resolver perfil desde la metadata (invitados no tienen)
	username := intent.Metadata[gateway.MetadataKeyUsername]
	profile := uc.resolveProfile(ctx, username)
	var profileID *int64
	if profile != nil {
		profileID = &profile.ID
	}

	order, err := entity.NewOrder(entity.OrderDetails{
		FullName:       shipping.Name,
		Email:          intent.BillingEmail(),
		PhoneNumber:    shipping.Phone,
		Country:        shipping.Address.Country,
		Postcode:       shipping.Address.PostalCode,
		TownOrCity:     shipping.Address.City,
		StreetAddress1: shipping.Address.Line1,
		StreetAddress2: shipping.Address.Line2,
		County:         shipping.Address.County,
		ProfileID:      profileID,
		StripePID:      intent.ID,
		OriginalBag:    originalBag,
	})
	if err != nil {
		return nil, fmt.Errorf("error building order from event: %w", err)
	}

	if err := uc.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("error saving order from event: %w", err)
	}

	if err := attachBagItems(ctx, uc.orderRepo, uc.productRepo, order, snapshot); err != nil {
		if delErr := uc.orderRepo.Delete(ctx, order.OrderNumber); delErr != nil {
			log.Printf("⚠️ Error deleting partial order %s: %v", order.OrderNumber, delErr)
		}
		if errors.Is(err, productentity.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %v", entity.ErrItemUnavailable, err)
		}
		return nil, fmt.Errorf("error materializing order items from event: %w", err)
	}

	order.UpdateTotals()
	if err := uc.orderRepo.UpdateTotals(ctx, order); err != nil {
		return nil, fmt.Errorf("error updating order totals from event: %w", err)
	}

	// save_info llega por metadata porque el form nunca se envió
	if intent.Metadata[gateway.MetadataKeySaveInfo] == "true" && profile != nil {
		uc.saveProfileDefaults(ctx, profile, shipping)
	}

	return order, nil
}

func (uc *ReconcilePaymentUseCase) resolveProfile(ctx context.Context, username string) *profileentity.UserProfile {
	if username == "" || username == entity.AnonymousUser {
		return nil
	}

	profile, err := uc.profileRepo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, profileentity.ErrProfileNotFound) {
			log.Printf("⚠️ Error resolving profile %s: %v", username, err)
		}
		return nil
	}
	return profile
}

func (uc *ReconcilePaymentUseCase) saveProfileDefaults(ctx context.Context, profile *profileentity.UserProfile, shipping *gateway.ShippingDetails) {
	profile.ApplyDefaults(profileentity.ShippingDefaults{
		PhoneNumber:    shipping.Phone,
		Country:        shipping.Address.Country,
		Postcode:       shipping.Address.PostalCode,
		TownOrCity:     shipping.Address.City,
		StreetAddress1: shipping.Address.Line1,
		StreetAddress2: shipping.Address.Line2,
		County:         shipping.Address.County,
	})

	if err := uc.profileRepo.UpdateDefaults(ctx, profile); err != nil {
		log.Printf("⚠️ Error saving profile defaults for %s: %v", profile.Username, err)
	}
}

// buildLookup arma el criterio del fuzzy match desde el evento, con la
// misma normalización vacío → ausente que usa el escritor primario
func buildLookup(intent *gateway.PaymentIntent, originalBag string) *entity.OrderLookup {
	lookup := &entity.OrderLookup{
		Email:       intent.BillingEmail(),
		GrandTotal:  intent.ChargedAmount(),
		OriginalBag: originalBag,
		StripePID:   intent.ID,
	}

	if intent.Shipping != nil {
		lookup.FullName = intent.Shipping.Name
		lookup.PhoneNumber = intent.Shipping.Phone
		lookup.Country = intent.Shipping.Address.Country
		lookup.Postcode = optionalField(intent.Shipping.Address.PostalCode)
		lookup.TownOrCity = intent.Shipping.Address.City
		lookup.StreetAddress1 = intent.Shipping.Address.Line1
		lookup.StreetAddress2 = optionalField(intent.Shipping.Address.Line2)
		lookup.County = optionalField(intent.Shipping.Address.County)
	}

	return lookup
}

func optionalField(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
