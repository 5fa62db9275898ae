package entity

import "errors"

var (
	ErrEmptyBag            = errors.New("bag is empty")
	ErrInvalidBag          = errors.New("bag snapshot is malformed")
	ErrInvalidQuantity     = errors.New("quantity must be greater than 0")
	ErrMissingContactInfo  = errors.New("full_name, email and phone_number are required")
	ErrMissingShippingInfo = errors.New("country, town_or_city and street_address1 are required")
	ErrDuplicateOrder      = errors.New("order number already exists")
	ErrOrderNotFound       = errors.New("order not found")
	ErrStripePIDRequired   = errors.New("stripe_pid is required")

	// Reconciliación de webhooks
	ErrItemUnavailable = errors.New("one of the products in the bag wasn't found")
)
