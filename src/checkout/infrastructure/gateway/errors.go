package gateway

import "errors"

var (
	ErrSignatureInvalid    = errors.New("webhook signature verification failed")
	ErrSignatureExpired    = errors.New("webhook signature timestamp outside tolerance")
	ErrMalformedSignature  = errors.New("webhook signature header is malformed")
	ErrMalformedPayload    = errors.New("webhook payload is malformed")
	ErrInvalidClientSecret = errors.New("client_secret is malformed")
)
