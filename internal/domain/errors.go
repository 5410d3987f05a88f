package domain

import "errors"

// Error kinds shared by every service. Callers wrap them with detail using %w and
// the HTTP layer maps them to status codes with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
