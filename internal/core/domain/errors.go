package domain

import "errors"

var (
	ErrValidation          = errors.New("email and password are required")
	ErrPasswordTooLong     = errors.New("password must be at most 72 bytes")
	ErrDuplicateEmail      = errors.New("user with this email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUnauthorized        = errors.New("invalid or expired token")
	ErrUserNotFound        = errors.New("user not found")
	ErrUpstreamRateLimited = errors.New("market data provider: too many requests")
	ErrUpstream            = errors.New("market data provider request failed")
)
