package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mattjboland/boutique-ado/src/bag"
	"github.com/mattjboland/boutique-ado/src/checkout/application/request"
	"github.com/mattjboland/boutique-ado/src/checkout/application/response"
	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
	"github.com/mattjboland/boutique-ado/src/checkout/domain/port"
	"github.com/mattjboland/boutique-ado/src/checkout/infrastructure/gateway"
	productentity "github.com/mattjboland/boutique-ado/src/products/domain/entity"
	productport "github.com/mattjboland/boutique-ado/src/products/domain/port"
	profileentity "github.com/mattjboland/boutique-ado/src/profiles/domain/entity"
	profileport "github.com/mattjboland/boutique-ado/src/profiles/domain/port"
)

// SubmitCheckoutUseCase caso de uso para confirmar el checkout (camino
// primario de creación de la orden, síncrono con el cliente)
type SubmitCheckoutUseCase struct {
	orderRepo   port.OrderRepository
	productRepo productport.ProductRepository
	profileRepo profileport.ProfileRepository
	bagStore    *bag.Store
	notifier    port.OrderNotifier
}

// NewSubmitCheckoutUseCase crea una nueva instancia del caso de uso
func NewSubmitCheckoutUseCase(
	orderRepo port.OrderRepository,
	productRepo productport.ProductRepository,
	profileRepo profileport.ProfileRepository,
	bagStore *bag.Store,
	notifier port.OrderNotifier,
) *SubmitCheckoutUseCase {
	return &SubmitCheckoutUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		profileRepo: profileRepo,
		bagStore:    bagStore,
		notifier:    notifier,
	}
}

// Execute materializa la orden a partir del bag de la sesión.
// El webhook puede crear la misma orden en paralelo: acá no se toma ningún
// lock, el reconciliador resuelve el duplicado contra la base.
// 1. Cargar y validar el bag de la sesión
// 2. Recuperar el intent id del client_secret
// 3. Resolver el perfil del usuario (si está registrado)
// 4. Persistir el aggregate y materializar los line items
// 5. Recalcular y persistir totales
// 6. Consumir el bag, guardar defaults del perfil, notificar
func (uc *SubmitCheckoutUseCase) Execute(ctx context.Context, sessionID string, req *request.CheckoutSubmitRequest) (*response.CheckoutSubmitResponse, error) {
	// PASO 1: Cargar el bag congelado de la sesión
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

	originalBag, err := snapshot.CanonicalJSON()
	if err != nil {
		return nil, err
	}

	// PASO 2: El client_secret del form referencia el intent del pago
	stripePID, err := gateway.SplitClientSecret(req.ClientSecret)
	if err != nil {
		return nil, err
	}

	// PASO 3: Resolver perfil (los invitados no tienen)
	profile := uc.resolveProfile(ctx, req.Username)
	var profileID *int64
	if profile != nil {
		profileID = &profile.ID
	}

	// PASO 4: Crear y persistir el aggregate, después los items.
	// Si un producto del bag ya no existe, la orden parcial se elimina:
	// nunca queda una orden con menos items que el bag congelado.
	order, err := entity.NewOrder(entity.OrderDetails{
		FullName:       req.FullName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Country:        req.Country,
		Postcode:       req.Postcode,
		TownOrCity:     req.TownOrCity,
		StreetAddress1: req.StreetAddress1,
		StreetAddress2: req.StreetAddress2,
		County:         req.County,
		ProfileID:      profileID,
		StripePID:      stripePID,
		OriginalBag:    originalBag,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("error saving order: %w", err)
	}

	if err := attachBagItems(ctx, uc.orderRepo, uc.productRepo, order, snapshot); err != nil {
		if delErr := uc.orderRepo.Delete(ctx, order.OrderNumber); delErr != nil {
			log.Printf("⚠️ Error deleting partial order %s: %v", order.OrderNumber, delErr)
		}
		if errors.Is(err, productentity.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %v", entity.ErrItemUnavailable, err)
		}
		return nil, fmt.Errorf("error materializing order items: %w", err)
	}

	// PASO 5: Totales derivados de los items persistidos
	order.UpdateTotals()
	if err := uc.orderRepo.UpdateTotals(ctx, order); err != nil {
		return nil, fmt.Errorf("error updating order totals: %w", err)
	}

	// PASO 6: El bag se consume una sola vez; la limpieza no puede
	// deshacer la orden ya confirmada
	if err := uc.bagStore.Clear(ctx, sessionID); err != nil {
		log.Printf("⚠️ Error clearing bag for session %s: %v", sessionID, err)
	}

	if req.SaveInfo && profile != nil {
		uc.saveProfileDefaults(ctx, profile, req)
	}

	// La notificación es best-effort: la orden ya existe y el fallo del
	// email no la revierte
	if err := uc.notifier.SendConfirmation(ctx, order); err != nil {
		log.Printf("⚠️ Error sending confirmation for order %s: %v", order.OrderNumber, err)
	}

	return &response.CheckoutSubmitResponse{
		OrderNumber: order.OrderNumber,
		RedirectURL: "/checkout/success/" + order.OrderNumber,
		GrandTotal:  order.GrandTotal,
	}, nil
}

// resolveProfile busca el perfil del usuario; username vacío o el sentinel
// de invitado resuelven a nil sin error
func (uc *SubmitCheckoutUseCase) resolveProfile(ctx context.Context, username string) *profileentity.UserProfile {
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

// saveProfileDefaults guarda los datos de envío como defaults del perfil.
// Best-effort: un fallo acá no afecta la orden.
func (uc *SubmitCheckoutUseCase) saveProfileDefaults(ctx context.Context, profile *profileentity.UserProfile, req *request.CheckoutSubmitRequest) {
	profile.ApplyDefaults(profileentity.ShippingDefaults{
		PhoneNumber:    req.PhoneNumber,
		Country:        req.Country,
		Postcode:       req.Postcode,
		TownOrCity:     req.TownOrCity,
		StreetAddress1: req.StreetAddress1,
		StreetAddress2: req.StreetAddress2,
		County:         req.County,
	})

	if err := uc.profileRepo.UpdateDefaults(ctx, profile); err != nil {
		log.Printf("⚠️ Error saving profile defaults for %s: %v", profile.Username, err)
	}
}
