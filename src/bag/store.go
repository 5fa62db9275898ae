package bag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
)

var ErrBagNotFound = errors.New("bag not found for session")

// TTL del bag de sesión
const bagTTL = 24 * time.Hour

// Store guarda el bag de cada sesión en Redis. Las acciones de bag
// (agregar/ajustar items) son un colaborador externo; el checkout solo
// lo lee al iniciar y lo limpia al consumirlo.
type Store struct {
	client *redis.Client
}

// NewStore crea un nuevo store de bags de sesión
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func bagKey(sessionID string) string {
	return "bag:" + sessionID
}

// Get carga el bag de una sesión; ErrBagNotFound si no existe
func (s *Store) Get(ctx context.Context, sessionID string) (entity.CartSnapshot, error) {
	data, err := s.client.Get(ctx, bagKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, ErrBagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading bag from redis: %w", err)
	}

	return entity.ParseCartSnapshot(data)
}

// Save persiste el bag de una sesión
func (s *Store) Save(ctx context.Context, sessionID string, snapshot entity.CartSnapshot) error {
	data, err := snapshot.CanonicalJSON()
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, bagKey(sessionID), data, bagTTL).Err(); err != nil {
		return fmt.Errorf("error saving bag to redis: %w", err)
	}

	return nil
}

// Clear marca el bag como consumido: se elimina de la sesión.
// El snapshot se consume exactamente una vez al materializar la orden.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, bagKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("error clearing bag from redis: %w", err)
	}

	return nil
}
