package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cryptotracker/tracker/internal/core/domain"
)

// The market payloads are the server's own domain types, so the agent and
// the /api/market handlers share one wire contract.
type (
	Coin        = domain.Coin
	PricePoint  = domain.PricePoint
	CoinLinks   = domain.CoinLinks
	CoinDetails = domain.CoinDetails
)

func (c *Client) MarketCoins(ctx context.Context, currency string, perPage int) ([]Coin, error) {
	q := url.Values{}
	q.Set("currency", currency)
	if perPage > 0 {
		q.Set("perPage", strconv.Itoa(perPage))
	}
	var resp []Coin
	err := c.do(ctx, http.MethodGet, "/api/market/coins?"+q.Encode(), nil, &resp, "")
	return resp, err
}

func (c *Client) MarketChart(ctx context.Context, coinID, currency string, days int) ([]PricePoint, error) {
	q := url.Values{}
	q.Set("currency", currency)
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	var resp []PricePoint
	err := c.do(ctx, http.MethodGet, "/api/market/coins/"+url.PathEscape(coinID)+"/chart?"+q.Encode(), nil, &resp, "")
	return resp, err
}

func (c *Client) CoinDetails(ctx context.Context, coinID string) (*CoinDetails, error) {
	var resp CoinDetails
	if err := c.do(ctx, http.MethodGet, "/api/market/coins/"+url.PathEscape(coinID), nil, &resp, ""); err != nil {
		return nil, err
	}
	return &resp, nil
}
