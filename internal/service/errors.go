package service

import "errors"

// Sentinel errors for the four recoverable failure classes. Handlers map
// them to 401/403/400/404; everything else is treated as a store failure.
var (
	ErrUnauthenticated = errors.New("no authenticated user")
	ErrForbidden       = errors.New("operation not permitted")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
)
