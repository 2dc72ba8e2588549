// Package market is the client for the public CoinGecko market-data API.
//
// Responses are cached by full request URL for a short TTL, outbound calls
// are throttled, and an upstream HTTP 429 surfaces as
// domain.ErrUpstreamRateLimited so callers can tell it apart from other
// failures.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/cryptotracker/tracker/internal/core/domain"
	"github.com/cryptotracker/tracker/internal/core/ports"
	"github.com/cryptotracker/tracker/internal/pkg/metrics"
)

const (
	DefaultBaseURL  = "https://api.coingecko.com/api/v3"
	DefaultCacheTTL = 5 * time.Minute

	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20
)

// Config controls how the client reaches the provider.
type Config struct {
	BaseURL string
	// CacheTTL is how long a successful response is reused.
	CacheTTL time.Duration
	// RequestsPerMinute throttles outbound calls; zero disables throttling.
	RequestsPerMinute int
	Timeout           time.Duration
}

// Client implements ports.MarketData.
type Client struct {
	baseURL  string
	http     *http.Client
	cache    ports.MarketCache
	cacheTTL time.Duration
	limiter  *rate.Limiter
	log      zerolog.Logger
}

// NewClient builds a client. cache may be nil to disable caching.
func NewClient(cfg Config, cache ports.MarketCache, log zerolog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		cache:    cache,
		cacheTTL: ttl,
		limiter:  limiter,
		log:      log,
	}
}

type marketCoin struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"current_price"`
	MarketCap                float64 `json:"market_cap"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
}

// MarketCoins returns the top coins by market cap priced in currency.
func (c *Client) MarketCoins(ctx context.Context, currency string, perPage int) ([]domain.Coin, error) {
	if perPage <= 0 {
		perPage = 10
	}
	q := url.Values{}
	q.Set("vs_currency", currency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", "1")
	q.Set("price_change_percentage", "24h")

	var raw []marketCoin
	if err := c.fetchJSON(ctx, "/coins/markets", q, &raw); err != nil {
		return nil, err
	}

	coins := make([]domain.Coin, 0, len(raw))
	for _, rc := range raw {
		coins = append(coins, domain.Coin{
			ID:           rc.ID,
			Name:         rc.Name,
			Symbol:       strings.ToUpper(rc.Symbol),
			Image:        rc.Image,
			CurrentPrice: rc.CurrentPrice,
			Change24h:    rc.PriceChangePercentage24h,
			MarketCap:    rc.MarketCap,
		})
	}
	return coins, nil
}

type marketChart struct {
	Prices [][2]float64 `json:"prices"`
}

// MarketChart returns a daily price series for the last days days.
func (c *Client) MarketChart(ctx context.Context, coinID, currency string, days int) ([]domain.PricePoint, error) {
	if days <= 0 {
		days = 7
	}
	q := url.Values{}
	q.Set("vs_currency", currency)
	q.Set("days", strconv.Itoa(days))
	q.Set("interval", "daily")

	var raw marketChart
	if err := c.fetchJSON(ctx, "/coins/"+url.PathEscape(coinID)+"/market_chart", q, &raw); err != nil {
		return nil, err
	}

	points := make([]domain.PricePoint, 0, len(raw.Prices))
	for _, p := range raw.Prices {
		points = append(points, domain.PricePoint{
			Time:  time.UnixMilli(int64(p[0])).UTC(),
			Price: p[1],
		})
	}
	return points, nil
}

type coinDetails struct {
	ID          string            `json:"id"`
	Symbol      string            `json:"symbol"`
	Name        string            `json:"name"`
	GenesisDate string            `json:"genesis_date"`
	Description map[string]string `json:"description"`
	Image       struct {
		Large string `json:"large"`
	} `json:"image"`
	Links struct {
		Homepage       []string `json:"homepage"`
		BlockchainSite []string `json:"blockchain_site"`
		SubredditURL   string   `json:"subreddit_url"`
		ReposURL       struct {
			GitHub []string `json:"github"`
		} `json:"repos_url"`
	} `json:"links"`
}

// CoinDetails returns project metadata for a coin.
func (c *Client) CoinDetails(ctx context.Context, coinID string) (*domain.CoinDetails, error) {
	q := url.Values{}
	q.Set("tickers", "false")
	q.Set("market_data", "false")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")

	var raw coinDetails
	if err := c.fetchJSON(ctx, "/coins/"+url.PathEscape(coinID), q, &raw); err != nil {
		return nil, err
	}

	description := make(map[string]string, len(raw.Description))
	for lang, text := range raw.Description {
		if text = strings.TrimSpace(text); text != "" {
			description[lang] = text
		}
	}

	return &domain.CoinDetails{
		ID:          raw.ID,
		Name:        raw.Name,
		Symbol:      strings.ToUpper(raw.Symbol),
		Image:       raw.Image.Large,
		GenesisDate: raw.GenesisDate,
		Description: description,
		Links: domain.CoinLinks{
			Homepage: nonEmpty(raw.Links.Homepage),
			Explorer: nonEmpty(raw.Links.BlockchainSite),
			Reddit:   raw.Links.SubredditURL,
			GitHub:   nonEmpty(raw.Links.ReposURL.GitHub),
		},
	}, nil
}

// fetchJSON performs a cached GET of path?query and decodes the body into out.
func (c *Client) fetchJSON(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	if body, ok := c.cached(ctx, reqURL); ok {
		if err := json.Unmarshal(body, out); err == nil {
			return nil
		}
		c.log.Warn().Str("url", reqURL).Msg("discarding undecodable cached market response")
	}

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrUpstream, path, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, reqURL, body, c.cacheTTL); err != nil {
			c.log.Warn().Err(err).Str("url", reqURL).Msg("failed to cache market response")
		}
	}
	return nil
}

func (c *Client) cached(ctx context.Context, reqURL string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, reqURL)
	if err != nil {
		c.log.Warn().Err(err).Str("url", reqURL).Msg("market cache lookup failed")
		return nil, false
	}
	if ok {
		metrics.MarketCacheLookupsTotal.WithLabelValues("hit").Inc()
		return body, true
	}
	metrics.MarketCacheLookupsTotal.WithLabelValues("miss").Inc()
	return nil, false
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("market throttle: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build market request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		metrics.MarketUpstreamDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer res.Body.Close()
	metrics.MarketUpstreamDuration.WithLabelValues(statusLabel(res.StatusCode)).Observe(time.Since(start).Seconds())

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrUpstreamRateLimited
	case res.StatusCode < 200 || res.StatusCode >= 300:
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, res.Status)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrUpstream, err)
	}
	return body, nil
}

func statusLabel(code int) string {
	if code == http.StatusTooManyRequests {
		return "429"
	}
	return strconv.Itoa(code/100) + "xx"
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
