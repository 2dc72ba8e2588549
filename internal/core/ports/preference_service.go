package ports

import (
	"context"

	"github.com/cryptotracker/tracker/internal/core/domain"
)

// PreferenceService mutates the preferences of an authenticated user.
type PreferenceService interface {
	UpdateSettings(ctx context.Context, userID string, patch domain.SettingsPatch) (*domain.PublicUser, error)
	ReplaceFavorites(ctx context.Context, userID string, favorites []string) (*domain.PublicUser, error)
}
