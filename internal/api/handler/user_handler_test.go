package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/cryptotracker/tracker/internal/core/domain"
)

type stubPreferenceService struct {
	settingsFn  func(ctx context.Context, userID string, patch domain.SettingsPatch) (*domain.PublicUser, error)
	favoritesFn func(ctx context.Context, userID string, favorites []string) (*domain.PublicUser, error)
}

func (s *stubPreferenceService) UpdateSettings(ctx context.Context, userID string, patch domain.SettingsPatch) (*domain.PublicUser, error) {
	return s.settingsFn(ctx, userID, patch)
}

func (s *stubPreferenceService) ReplaceFavorites(ctx context.Context, userID string, favorites []string) (*domain.PublicUser, error) {
	return s.favoritesFn(ctx, userID, favorites)
}

func alice() *domain.User {
	return &domain.User{
		ID:        "u1",
		Email:     "alice@test.com",
		Favorites: []string{"bitcoin"},
		Settings:  domain.DefaultSettings(),
	}
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("user", alice())
	return c
}

func TestUserHandler_Me(t *testing.T) {
	e := newTestEcho()
	handler := NewUserHandler(&stubPreferenceService{})

	rec := httptest.NewRecorder()
	c := authedContext(e, httptest.NewRequest(http.MethodGet, "/api/user/me", nil), rec)

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["email"] != "alice@test.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	for _, hidden := range []string{"id", "passwordHash", "createdAt"} {
		if _, ok := resp[hidden]; ok {
			t.Fatalf("%s must not be exposed: %+v", hidden, resp)
		}
	}
}

func TestUserHandler_Me_WithoutUser(t *testing.T) {
	e := newTestEcho()
	handler := NewUserHandler(&stubPreferenceService{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/user/me", nil), httptest.NewRecorder())

	if code := httpCode(t, handler.Me(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestUserHandler_UpdateSettings_PassesOnlySuppliedKeys(t *testing.T) {
	e := newTestEcho()
	var got domain.SettingsPatch
	handler := NewUserHandler(&stubPreferenceService{
		settingsFn: func(_ context.Context, userID string, patch domain.SettingsPatch) (*domain.PublicUser, error) {
			if userID != "u1" {
				t.Fatalf("unexpected user id %q", userID)
			}
			got = patch
			u := alice()
			u.Settings = patch.Apply(u.Settings)
			p := u.Public()
			return &p, nil
		},
	})

	rec := httptest.NewRecorder()
	c := authedContext(e, jsonRequest(http.MethodPut, "/api/user/settings", `{"theme":"light","currency":""}`), rec)

	if err := handler.UpdateSettings(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Theme == nil || *got.Theme != "light" {
		t.Fatalf("theme not forwarded: %+v", got)
	}
	if got.Language != nil || got.Currency != nil {
		t.Fatalf("absent and empty keys must not be forwarded: %+v", got)
	}

	var resp domain.PublicUser
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Settings != (domain.Settings{Language: "ua", Theme: "light", Currency: "uah"}) {
		t.Fatalf("unexpected settings: %+v", resp.Settings)
	}
}

func TestUserHandler_UpdateSettings_EmptyBody(t *testing.T) {
	e := newTestEcho()
	handler := NewUserHandler(&stubPreferenceService{
		settingsFn: func(_ context.Context, _ string, patch domain.SettingsPatch) (*domain.PublicUser, error) {
			if !patch.IsEmpty() {
				t.Fatalf("expected empty patch, got %+v", patch)
			}
			p := alice().Public()
			return &p, nil
		},
	})

	rec := httptest.NewRecorder()
	c := authedContext(e, jsonRequest(http.MethodPut, "/api/user/settings", ""), rec)

	if err := handler.UpdateSettings(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_UpdateSettings_RejectsBadBodies(t *testing.T) {
	e := newTestEcho()
	handler := NewUserHandler(&stubPreferenceService{
		settingsFn: func(context.Context, string, domain.SettingsPatch) (*domain.PublicUser, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	})

	cases := map[string]string{
		"unknown key":  `{"fontSize":14}`,
		"non string":   `{"theme":1}`,
		"not object":   `["dark"]`,
		"malformed":    `{"theme":`,
		"too long":     `{"theme":"` + strings.Repeat("a", 33) + `"}`,
		"extra domain": `{"language":"en","email":"eve@test.com"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c := authedContext(e, jsonRequest(http.MethodPut, "/api/user/settings", body), httptest.NewRecorder())
			if code := httpCode(t, handler.UpdateSettings(c)); code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", code)
			}
		})
	}
}

func TestUserHandler_UpdateSettings_UserGone(t *testing.T) {
	e := newTestEcho()
	handler := NewUserHandler(&stubPreferenceService{
		settingsFn: func(context.Context, string, domain.SettingsPatch) (*domain.PublicUser, error) {
			return nil, domain.ErrUserNotFound
		},
	})

	c := authedContext(e, jsonRequest(http.MethodPut, "/api/user/settings", `{"theme":"light"}`), httptest.NewRecorder())

	if err := handler.UpdateSettings(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_UpdateFavorites_ReplacesWholesale(t *testing.T) {
	e := newTestEcho()
	var got []string
	handler := NewUserHandler(&stubPreferenceService{
		favoritesFn: func(_ context.Context, _ string, favorites []string) (*domain.PublicUser, error) {
			got = favorites
			u := alice()
			u.Favorites = favorites
			p := u.Public()
			return &p, nil
		},
	})

	rec := httptest.NewRecorder()
	c := authedContext(e, jsonRequest(http.MethodPut, "/api/user/favorites", `{"favorites":["ethereum","solana"]}`), rec)

	if err := handler.UpdateFavorites(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(got) != 2 || got[0] != "ethereum" || got[1] != "solana" {
		t.Fatalf("unexpected favorites forwarded: %v", got)
	}
}

func TestUserHandler_UpdateFavorites_EmptyArray(t *testing.T) {
	e := newTestEcho()
	handler := NewUserHandler(&stubPreferenceService{
		favoritesFn: func(_ context.Context, _ string, favorites []string) (*domain.PublicUser, error) {
			if favorites == nil || len(favorites) != 0 {
				t.Fatalf("expected empty non-nil slice, got %#v", favorites)
			}
			p := alice().Public()
			p.Favorites = favorites
			return &p, nil
		},
	})

	rec := httptest.NewRecorder()
	c := authedContext(e, jsonRequest(http.MethodPut, "/api/user/favorites", `{"favorites":[]}`), rec)

	if err := handler.UpdateFavorites(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestUserHandler_UpdateFavorites_RejectsNonArrays(t *testing.T) {
	e := newTestEcho()
	handler := NewUserHandler(&stubPreferenceService{
		favoritesFn: func(context.Context, string, []string) (*domain.PublicUser, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	})

	cases := map[string]string{
		"missing":      `{}`,
		"string":       `{"favorites":"bitcoin"}`,
		"null":         `{"favorites":null}`,
		"numbers":      `{"favorites":[1,2]}`,
		"mixed":        `{"favorites":["bitcoin",3]}`,
		"object":       `{"favorites":{"0":"bitcoin"}}`,
		"malformed":    `{"favorites":[`,
		"nested array": `{"favorites":[["bitcoin"]]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c := authedContext(e, jsonRequest(http.MethodPut, "/api/user/favorites", body), httptest.NewRecorder())
			if code := httpCode(t, handler.UpdateFavorites(c)); code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", code)
			}
		})
	}
}
