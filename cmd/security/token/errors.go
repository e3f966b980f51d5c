package token

import "errors"

// Sentinel verification errors. Callers above this layer must collapse all of
// them into a single unauthorized outcome; the distinction exists for logs and
// tests only.
var (
	// ErrSignatureInvalid is returned when the signature does not match the secret.
	ErrSignatureInvalid = errors.New("token signature invalid")

	// ErrExpired is returned when the embedded expiry has passed.
	ErrExpired = errors.New("token expired")

	// ErrMalformed is returned when the token cannot be decoded, or when a
	// credential of the wrong kind is presented.
	ErrMalformed = errors.New("token malformed")

	// ErrConfig is returned for invalid codec configuration.
	ErrConfig = errors.New("invalid token config")
)
