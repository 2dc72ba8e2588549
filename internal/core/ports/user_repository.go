package ports

import (
	"context"
	"time"

	"github.com/cryptotracker/tracker/internal/core/domain"
)

// UserRepository is the preference store: one document per account.
// Emails passed in are expected to be normalized already.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create fails with domain.ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	// UpdateSettings merges only the fields set in patch.
	UpdateSettings(ctx context.Context, id string, patch domain.SettingsPatch) (*domain.User, error)
	// ReplaceFavorites overwrites the whole favorites array.
	ReplaceFavorites(ctx context.Context, id string, favorites []string) (*domain.User, error)
}

// TokenDenylist remembers revoked token ids until they would have expired anyway.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
