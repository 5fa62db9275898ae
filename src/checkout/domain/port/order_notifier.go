package port

import (
	"context"

	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
)

// OrderNotifier despacha la confirmación de una orden ya persistida.
// Lo invocan los dos caminos (submission y webhook) una vez confirmada.
type OrderNotifier interface {
	SendConfirmation(ctx context.Context, order *entity.Order) error
}
