package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cryptotracker/tracker/internal/core/domain"
	"github.com/cryptotracker/tracker/internal/core/ports"
)

type PreferenceService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewPreferenceService(repo ports.UserRepository, logger zerolog.Logger) *PreferenceService {
	return &PreferenceService{repo: repo, logger: logger}
}

// UpdateSettings applies only the supplied settings fields. An empty patch
// returns the current projection unchanged.
func (s *PreferenceService) UpdateSettings(ctx context.Context, userID string, patch domain.SettingsPatch) (*domain.PublicUser, error) {
	var (
		user *domain.User
		err  error
	)
	if patch.IsEmpty() {
		user, err = s.repo.FindByID(ctx, userID)
	} else {
		user, err = s.repo.UpdateSettings(ctx, userID, patch)
	}
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}

	s.logger.Debug().Str("user_id", userID).Interface("settings", user.Settings).Msg("settings updated")
	public := user.Public()
	return &public, nil
}

// ReplaceFavorites overwrites the stored favorites with the given list.
func (s *PreferenceService) ReplaceFavorites(ctx context.Context, userID string, favorites []string) (*domain.PublicUser, error) {
	if favorites == nil {
		favorites = []string{}
	}

	user, err := s.repo.ReplaceFavorites(ctx, userID, favorites)
	if err != nil {
		return nil, fmt.Errorf("replace favorites: %w", err)
	}

	s.logger.Debug().Str("user_id", userID).Int("count", len(user.Favorites)).Msg("favorites replaced")
	public := user.Public()
	return &public, nil
}
