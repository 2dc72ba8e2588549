package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cryptotracker/tracker/internal/core/domain"
	"github.com/cryptotracker/tracker/internal/core/ports"
)

// MarketHandler proxies read-only market data so browsers never call the
// provider directly and share one server-side cache.
type MarketHandler struct {
	market ports.MarketData
}

func NewMarketHandler(market ports.MarketData) *MarketHandler {
	return &MarketHandler{market: market}
}

type coinsQuery struct {
	Currency string `query:"currency" validate:"omitempty,alpha,max=10"`
	PerPage  int    `query:"perPage" validate:"omitempty,min=1,max=250"`
}

type chartQuery struct {
	ID       string `param:"id" validate:"required,max=100"`
	Currency string `query:"currency" validate:"omitempty,alpha,max=10"`
	Days     int    `query:"days" validate:"omitempty,min=1,max=365"`
}

type coinQuery struct {
	ID string `param:"id" validate:"required,max=100"`
}

// Coins lists the top coins by market cap.
//
// @Summary      Market overview
// @Tags         market
// @Produce      json
// @Param        currency  query     string  false  "Quote currency (default uah)"
// @Param        perPage   query     int     false  "Number of coins (default 10)"
// @Success      200       {array}   domain.Coin
// @Failure      429       {object}  ErrorResponse
// @Failure      502       {object}  ErrorResponse
// @Router       /market/coins [get]
func (h *MarketHandler) Coins(c echo.Context) error {
	var q coinsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	coins, err := h.market.MarketCoins(c.Request().Context(), currencyOrDefault(q.Currency), q.PerPage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, coins)
}

// Chart returns the price history of a coin.
//
// @Summary      Price history
// @Tags         market
// @Produce      json
// @Param        id        path      string  true   "Coin id (e.g. bitcoin)"
// @Param        currency  query     string  false  "Quote currency (default uah)"
// @Param        days      query     int     false  "Days of history (default 7)"
// @Success      200       {array}   domain.PricePoint
// @Failure      429       {object}  ErrorResponse
// @Failure      502       {object}  ErrorResponse
// @Router       /market/coins/{id}/chart [get]
func (h *MarketHandler) Chart(c echo.Context) error {
	var q chartQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	points, err := h.market.MarketChart(c.Request().Context(), q.ID, currencyOrDefault(q.Currency), q.Days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, points)
}

// Details returns project metadata for a coin.
//
// @Summary      Coin details
// @Tags         market
// @Produce      json
// @Param        id   path      string  true  "Coin id (e.g. bitcoin)"
// @Success      200  {object}  domain.CoinDetails
// @Failure      429  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /market/coins/{id} [get]
func (h *MarketHandler) Details(c echo.Context) error {
	var q coinQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	details, err := h.market.CoinDetails(c.Request().Context(), q.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, details)
}

func bindAndValidate(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return domain.DefaultCurrency
	}
	return strings.ToLower(currency)
}
