package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mattjboland/boutique-ado/src/profiles/domain/entity"
)

// ProfilePostgresRepository implementa ProfileRepository usando PostgreSQL
type ProfilePostgresRepository struct {
	db *sql.DB
}

// NewProfilePostgresRepository crea una nueva instancia del repositorio
func NewProfilePostgresRepository(db *sql.DB) *ProfilePostgresRepository {
	return &ProfilePostgresRepository{
		db: db,
	}
}

// FindByUsername busca un perfil por username
func (r *ProfilePostgresRepository) FindByUsername(ctx context.Context, username string) (*entity.UserProfile, error) {
	query := `
		SELECT id, username, default_phone_number, default_country,
		       default_postcode, default_town_or_city,
		       default_street_address1, default_street_address2, default_county
		FROM user_profiles
		WHERE username = $1
	`

	profile := &entity.UserProfile{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&profile.ID,
		&profile.Username,
		&profile.DefaultPhoneNumber,
		&profile.DefaultCountry,
		&profile.DefaultPostcode,
		&profile.DefaultTownOrCity,
		&profile.DefaultStreetAddress1,
		&profile.DefaultStreetAddress2,
		&profile.DefaultCounty,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding profile: %w", err)
	}

	return profile, nil
}

// UpdateDefaults persiste los datos de envío por defecto
func (r *ProfilePostgresRepository) UpdateDefaults(ctx context.Context, profile *entity.UserProfile) error {
	query := `
		UPDATE user_profiles
		SET default_phone_number = $2,
		    default_country = $3,
		    default_postcode = $4,
		    default_town_or_city = $5,
		    default_street_address1 = $6,
		    default_street_address2 = $7,
		    default_county = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.DefaultPhoneNumber,
		profile.DefaultCountry,
		profile.DefaultPostcode,
		profile.DefaultTownOrCity,
		profile.DefaultStreetAddress1,
		profile.DefaultStreetAddress2,
		profile.DefaultCounty,
	)
	if err != nil {
		return fmt.Errorf("error updating profile defaults: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return entity.ErrProfileNotFound
	}

	return nil
}
