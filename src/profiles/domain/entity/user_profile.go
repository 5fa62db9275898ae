package entity

import "errors"

var ErrProfileNotFound = errors.New("user profile not found")

// UserProfile guarda los datos de envío por defecto de un usuario
// registrado. Todos los default_* son opcionales: se guardan ausentes,
// nunca como string vacío.
type UserProfile struct {
	ID                    int64   `json:"id"`
	Username              string  `json:"username"`
	DefaultPhoneNumber    *string `json:"default_phone_number,omitempty"`
	DefaultCountry        *string `json:"default_country,omitempty"`
	DefaultPostcode       *string `json:"default_postcode,omitempty"`
	DefaultTownOrCity     *string `json:"default_town_or_city,omitempty"`
	DefaultStreetAddress1 *string `json:"default_street_address1,omitempty"`
	DefaultStreetAddress2 *string `json:"default_street_address2,omitempty"`
	DefaultCounty         *string `json:"default_county,omitempty"`
}

// ShippingDefaults son los datos de envío de un pago con save_info activo
type ShippingDefaults struct {
	PhoneNumber    string
	Country        string
	Postcode       string
	TownOrCity     string
	StreetAddress1 string
	StreetAddress2 string
	County         string
}

// ApplyDefaults sobreescribe los datos por defecto del perfil con los
// datos de envío del pago (string vacío → ausente)
func (p *UserProfile) ApplyDefaults(defaults ShippingDefaults) {
	p.DefaultPhoneNumber = nilIfEmpty(defaults.PhoneNumber)
	p.DefaultCountry = nilIfEmpty(defaults.Country)
	p.DefaultPostcode = nilIfEmpty(defaults.Postcode)
	p.DefaultTownOrCity = nilIfEmpty(defaults.TownOrCity)
	p.DefaultStreetAddress1 = nilIfEmpty(defaults.StreetAddress1)
	p.DefaultStreetAddress2 = nilIfEmpty(defaults.StreetAddress2)
	p.DefaultCounty = nilIfEmpty(defaults.County)
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
