package api

import (
	"context"
	"net/http"

	"github.com/cryptotracker/tracker/internal/agent/session"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string          `json:"token"`
	User  session.Profile `json:"user"`
}

func (c *Client) Register(ctx context.Context, email, password string) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", credentials{Email: email, Password: password}, &resp, "")
	return resp, err
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", credentials{Email: email, Password: password}, &resp, "")
	return resp, err
}

// Logout revokes token on the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, token)
}

// Me fetches the profile the token belongs to.
func (c *Client) Me(ctx context.Context, token string) (session.Profile, error) {
	var resp session.Profile
	err := c.do(ctx, http.MethodGet, "/api/user/me", nil, &resp, token)
	return resp, err
}

// UpdateSettings sends the full settings triple.
func (c *Client) UpdateSettings(ctx context.Context, token string, settings session.Settings) (session.Profile, error) {
	var resp session.Profile
	err := c.do(ctx, http.MethodPut, "/api/user/settings", settings, &resp, token)
	return resp, err
}

// UpdateFavorites replaces the server-side favorites with favorites.
func (c *Client) UpdateFavorites(ctx context.Context, token string, favorites []string) (session.Profile, error) {
	if favorites == nil {
		favorites = []string{}
	}
	var resp session.Profile
	err := c.do(ctx, http.MethodPut, "/api/user/favorites", struct {
		Favorites []string `json:"favorites"`
	}{favorites}, &resp, token)
	return resp, err
}
