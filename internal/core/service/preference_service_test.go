package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cryptotracker/tracker/internal/core/domain"
)

func strPtr(s string) *string { return &s }

func seededPreferenceService(t *testing.T) (*PreferenceService, *stubUserRepo, string) {
	t.Helper()
	repo := newStubUserRepo()
	user, err := repo.Create(context.Background(), "kate@example.com", "hash")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return NewPreferenceService(repo, zerolog.Nop()), repo, user.ID
}

func TestPreferenceService_UpdateSettings_OnlySuppliedKeys(t *testing.T) {
	svc, _, id := seededPreferenceService(t)

	got, err := svc.UpdateSettings(context.Background(), id, domain.SettingsPatch{Theme: strPtr("light")})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	want := domain.Settings{Language: "ua", Theme: "light", Currency: "uah"}
	if got.Settings != want {
		t.Fatalf("expected %+v, got %+v", want, got.Settings)
	}
}

func TestPreferenceService_UpdateSettings_EmptyPatch(t *testing.T) {
	svc, _, id := seededPreferenceService(t)

	got, err := svc.UpdateSettings(context.Background(), id, domain.SettingsPatch{})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if got.Settings != domain.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", got.Settings)
	}
}

func TestPreferenceService_UpdateSettings_UnknownUser(t *testing.T) {
	svc, _, _ := seededPreferenceService(t)

	_, err := svc.UpdateSettings(context.Background(), "missing", domain.SettingsPatch{Language: strPtr("en")})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPreferenceService_ReplaceFavorites_FullReplace(t *testing.T) {
	svc, _, id := seededPreferenceService(t)

	if _, err := svc.ReplaceFavorites(context.Background(), id, []string{"dogecoin", "tether", "dogecoin"}); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	got, err := svc.ReplaceFavorites(context.Background(), id, []string{"bitcoin", "ethereum"})
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}
	if !reflect.DeepEqual(got.Favorites, []string{"bitcoin", "ethereum"}) {
		t.Fatalf("unexpected favorites: %v", got.Favorites)
	}
}

func TestPreferenceService_ReplaceFavorites_NilBecomesEmpty(t *testing.T) {
	svc, repo, id := seededPreferenceService(t)

	got, err := svc.ReplaceFavorites(context.Background(), id, nil)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got.Favorites == nil || len(got.Favorites) != 0 {
		t.Fatalf("expected empty favorites, got %v", got.Favorites)
	}
	if repo.users[id].Favorites == nil {
		t.Fatalf("stored favorites must never be nil")
	}
}

func TestPreferenceService_ReplaceFavorites_UnknownUser(t *testing.T) {
	svc, _, _ := seededPreferenceService(t)

	if _, err := svc.ReplaceFavorites(context.Background(), "missing", []string{"bitcoin"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
