package ports

import (
	"context"

	"github.com/cryptotracker/tracker/internal/core/domain"
)

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Verify resolves a bearer token to its user or fails with domain.ErrUnauthorized.
	Verify(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
}
