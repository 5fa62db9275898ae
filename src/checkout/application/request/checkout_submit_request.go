package request

// CheckoutSubmitRequest representa el formulario de contacto y envío del
// checkout. Los requeridos se validan con binding; postcode, county y
// street_address2 son opcionales.
type CheckoutSubmitRequest struct {
	FullName       string `json:"full_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	PhoneNumber    string `json:"phone_number" binding:"required"`
	Country        string `json:"country" binding:"required"`
	Postcode       string `json:"postcode"`
	TownOrCity     string `json:"town_or_city" binding:"required"`
	StreetAddress1 string `json:"street_address1" binding:"required"`
	StreetAddress2 string `json:"street_address2"`
	County         string `json:"county"`

	// Token de correlación con el gateway, provisto por el cliente
	ClientSecret string `json:"client_secret" binding:"required"`
	SaveInfo     bool   `json:"save_info"`
	Username     string `json:"username"`
}
