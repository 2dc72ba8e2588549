package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cryptotracker/tracker/internal/core/domain"
	"github.com/cryptotracker/tracker/internal/pkg/metrics"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

// TokenVerifier resolves a bearer token to the user it was issued for.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.User, error)
}

// Auth validates the bearer token and injects the resolved user into the
// context. Requests without a valid token never reach next.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := BearerToken(c.Request())
			if err != nil {
				metrics.TokenRejectionsTotal.Inc()
				return err
			}

			user, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					metrics.TokenRejectionsTotal.Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthorized.Error())
				}
				return err
			}

			c.Set(userKey, user)
			c.Set(tokenKey, token)
			return next(c)
		}
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "authorization required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// CurrentUser returns the user stored by Auth, or nil outside authenticated routes.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(userKey).(*domain.User)
	return user
}

// CurrentToken returns the raw bearer token accepted by Auth.
func CurrentToken(c echo.Context) string {
	token, _ := c.Get(tokenKey).(string)
	return token
}
