package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
	productentity "github.com/mattjboland/boutique-ado/src/products/domain/entity"
	profileentity "github.com/mattjboland/boutique-ado/src/profiles/domain/entity"
)

// fakeOrderRepo implementa port.OrderRepository en memoria, simulando la
// visibilidad tardía del escritor primario con matchAfter
type fakeOrderRepo struct {
	mu sync.Mutex

	orders map[string]*entity.Order
	items  map[string][]entity.OrderLineItem

	// FindMatching falla con ErrOrderNotFound hasta la llamada matchAfter
	matchAfter int
	findCalls  int

	saveErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[string]*entity.Order),
		items:  make(map[string][]entity.OrderLineItem),
	}
}

func (r *fakeOrderRepo) Save(ctx context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}
	stored := *order
	r.orders[order.OrderNumber] = &stored
	return nil
}

func (r *fakeOrderRepo) AddLineItem(ctx context.Context, item *entity.OrderLineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[item.OrderNumber]; !ok {
		return entity.ErrOrderNotFound
	}
	r.items[item.OrderNumber] = append(r.items[item.OrderNumber], *item)
	return nil
}

func (r *fakeOrderRepo) UpdateTotals(ctx context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.OrderNumber]
	if !ok {
		return entity.ErrOrderNotFound
	}
	stored.OrderTotal = order.OrderTotal
	stored.DeliveryCost = order.DeliveryCost
	stored.GrandTotal = order.GrandTotal
	return nil
}

func (r *fakeOrderRepo) Delete(ctx context.Context, orderNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[orderNumber]; !ok {
		return entity.ErrOrderNotFound
	}
	delete(r.orders, orderNumber)
	delete(r.items, orderNumber)
	return nil
}

func (r *fakeOrderRepo) FindByNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderNumber]
	if !ok {
		return nil, entity.ErrOrderNotFound
	}
	found := *order
	found.LineItems = append([]entity.OrderLineItem(nil), r.items[orderNumber]...)
	return &found, nil
}

func (r *fakeOrderRepo) FindMatching(ctx context.Context, lookup *entity.OrderLookup) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.findCalls++
	if r.findCalls < r.matchAfter {
		return nil, entity.ErrOrderNotFound
	}

	for _, order := range r.orders {
		if matches(order, lookup) {
			found := *order
			found.LineItems = append([]entity.OrderLineItem(nil), r.items[order.OrderNumber]...)
			return &found, nil
		}
	}
	return nil, entity.ErrOrderNotFound
}

func matches(order *entity.Order, lookup *entity.OrderLookup) bool {
	return strings.EqualFold(order.FullName, lookup.FullName) &&
		strings.EqualFold(order.Email, lookup.Email) &&
		order.GrandTotal.Equal(lookup.GrandTotal) &&
		order.OriginalBag == lookup.OriginalBag &&
		order.StripePID == lookup.StripePID &&
		optionalEqual(order.Postcode, lookup.Postcode) &&
		optionalEqual(order.StreetAddress2, lookup.StreetAddress2) &&
		optionalEqual(order.County, lookup.County)
}

func optionalEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return strings.EqualFold(*a, *b)
}

func (r *fakeOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func (r *fakeOrderRepo) single() *entity.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	for number, order := range r.orders {
		found := *order
		found.LineItems = append([]entity.OrderLineItem(nil), r.items[number]...)
		return &found
	}
	return nil
}

// fakeProductRepo implementa ProductRepository sobre un mapa fijo
type fakeProductRepo struct {
	products map[int64]productentity.Product
}

func skuOf(s string) *string {
	return &s
}

func (r *fakeProductRepo) FindByID(ctx context.Context, productID int64) (*productentity.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, productentity.ErrProductNotFound
	}
	return &p, nil
}

// fakeProfileRepo implementa ProfileRepository sobre un mapa por username
type fakeProfileRepo struct {
	profiles map[string]*profileentity.UserProfile
	updated  []*profileentity.UserProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*profileentity.UserProfile)}
}

func (r *fakeProfileRepo) FindByUsername(ctx context.Context, username string) (*profileentity.UserProfile, error) {
	profile, ok := r.profiles[username]
	if !ok {
		return nil, profileentity.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *fakeProfileRepo) UpdateDefaults(ctx context.Context, profile *profileentity.UserProfile) error {
	copied := *profile
	r.updated = append(r.updated, &copied)
	return nil
}

// fakeNotifier registra las confirmaciones despachadas
type fakeNotifier struct {
	sent []string
	err  error
}

func (n *fakeNotifier) SendConfirmation(ctx context.Context, order *entity.Order) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, order.OrderNumber)
	return nil
}
