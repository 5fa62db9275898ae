package port

import (
	"context"

	"github.com/mattjboland/boutique-ado/src/profiles/domain/entity"
)

// ProfileRepository define la resolución y actualización de perfiles
type ProfileRepository interface {
	FindByUsername(ctx context.Context, username string) (*entity.UserProfile, error)
	// UpdateDefaults persiste los datos de envío por defecto del perfil
	UpdateDefaults(ctx context.Context, profile *entity.UserProfile) error
}
