package jwt

import "errors"

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrMissingTenant rejects tokens that are not bound to a tenant; every
	// ranking read and rebuild is tenant scoped.
	ErrMissingTenant = errors.New("token carries no tenant")
)
