package redis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MarketCache stores upstream market-data responses.
// Key format: market:<sha1 of request url>
type MarketCache struct {
	client *redis.Client
}

func NewMarketCache(client *redis.Client) *MarketCache {
	return &MarketCache{client: client}
}

func (c *MarketCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("market cache get: %w", err)
	}
	return body, true, nil
}

func (c *MarketCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), body, ttl).Err(); err != nil {
		return fmt.Errorf("market cache set: %w", err)
	}
	return nil
}

func (c *MarketCache) key(requestURL string) string {
	sum := sha1.Sum([]byte(requestURL))
	return "market:" + hex.EncodeToString(sum[:])
}
