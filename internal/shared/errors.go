package shared

import "errors"

var (
	// ErrValidation indicates malformed or missing input from the caller.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a referenced resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness collision (sku, barcode, idempotency key).
	ErrConflict = errors.New("conflict")
	// ErrInsufficientStock indicates a stock-level business rejection.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or expired session token.
	ErrUnauthorized = errors.New("unauthorized")
)
