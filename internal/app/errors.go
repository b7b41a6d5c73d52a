package app

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrNotAdmin           = errors.New("admin role required")
	ErrValidation         = errors.New("validation failed")
	ErrSessionNotFound    = errors.New("session not found")
	ErrForbidden          = errors.New("operation not permitted")
	ErrBackendUnavailable = errors.New("backend unavailable")
)
