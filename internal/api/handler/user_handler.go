package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cryptotracker/tracker/internal/core/domain"
	"github.com/cryptotracker/tracker/internal/core/ports"
	"github.com/cryptotracker/tracker/internal/pkg/metrics"
)

const maxPreferenceBody = 64 << 10

// UserHandler serves the authenticated user's profile and preferences.
type UserHandler struct {
	preferences ports.PreferenceService
}

func NewUserHandler(preferences ports.PreferenceService) *UserHandler {
	return &UserHandler{preferences: preferences}
}

// settingsRequest is a closed record: unknown keys are rejected.
type settingsRequest struct {
	Language *string `json:"language,omitempty" validate:"omitempty,max=32"`
	Theme    *string `json:"theme,omitempty" validate:"omitempty,max=32"`
	Currency *string `json:"currency,omitempty" validate:"omitempty,max=32"`
}

type favoritesRequest struct {
	Favorites json.RawMessage `json:"favorites" swaggertype:"array,string"`
}

type favoritesPayload struct {
	Favorites []string `validate:"max=500,dive,max=128"`
}

// Me returns the public projection of the authenticated user.
//
// @Summary      Current user
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.PublicUser
// @Failure      401  {object}  ErrorResponse
// @Router       /user/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user.Public())
}

// UpdateSettings applies any subset of language, theme and currency.
//
// @Summary      Update display settings
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      settingsRequest  true  "Settings to change"
// @Success      200   {object}  domain.PublicUser
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /user/settings [put]
func (h *UserHandler) UpdateSettings(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req settingsRequest
	if err := decodeStrict(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "settings accept only language, theme and currency as strings")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.preferences.UpdateSettings(c.Request().Context(), user.ID, req.patch())
	if err != nil {
		return err
	}

	metrics.PreferenceUpdatesTotal.WithLabelValues("settings").Inc()
	return c.JSON(http.StatusOK, updated)
}

// UpdateFavorites replaces the favorites array wholesale.
//
// @Summary      Replace favorite coins
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      favoritesRequest  true  "Full favorites list"
// @Success      200   {object}  domain.PublicUser
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /user/favorites [put]
func (h *UserHandler) UpdateFavorites(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req favoritesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	favorites, err := parseFavorites(req.Favorites)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "favorites is required and must be an array of strings")
	}
	if err := c.Validate(&favoritesPayload{Favorites: favorites}); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.preferences.ReplaceFavorites(c.Request().Context(), user.ID, favorites)
	if err != nil {
		return err
	}

	metrics.PreferenceUpdatesTotal.WithLabelValues("favorites").Inc()
	return c.JSON(http.StatusOK, updated)
}

// patch treats empty strings as "not supplied".
func (r settingsRequest) patch() domain.SettingsPatch {
	keep := func(v *string) *string {
		if v == nil || *v == "" {
			return nil
		}
		return v
	}
	return domain.SettingsPatch{
		Language: keep(r.Language),
		Theme:    keep(r.Theme),
		Currency: keep(r.Currency),
	}
}

func parseFavorites(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, errors.New("favorites is not an array")
	}
	var favorites []string
	if err := json.Unmarshal(raw, &favorites); err != nil {
		return nil, err
	}
	if favorites == nil {
		favorites = []string{}
	}
	return favorites, nil
}

// decodeStrict decodes a JSON body rejecting unknown fields. An empty body
// decodes to the zero value.
func decodeStrict(c echo.Context, v any) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPreferenceBody))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
