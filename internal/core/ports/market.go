package ports

import (
	"context"
	"time"

	"github.com/cryptotracker/tracker/internal/core/domain"
)

// MarketData is the read-only market data collaborator.
type MarketData interface {
	MarketCoins(ctx context.Context, currency string, perPage int) ([]domain.Coin, error)
	MarketChart(ctx context.Context, coinID, currency string, days int) ([]domain.PricePoint, error)
	CoinDetails(ctx context.Context, coinID string) (*domain.CoinDetails, error)
}

// MarketCache stores raw upstream responses keyed by the full request URL.
// Get reports ok=false on a miss.
type MarketCache interface {
	Get(ctx context.Context, key string) (body []byte, ok bool, err error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}
