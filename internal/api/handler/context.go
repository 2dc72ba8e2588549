package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cryptotracker/tracker/internal/api/middleware"
	"github.com/cryptotracker/tracker/internal/core/domain"
)

// ctxUser returns the user resolved by the Auth middleware. Its absence means
// the route was mounted without the middleware; reject rather than guess.
func ctxUser(c echo.Context) (*domain.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return user, nil
}
