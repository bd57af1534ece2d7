package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"StockAdvisor/internal/cache"
	"StockAdvisor/internal/model"
)

// CachedFetcher serves repeated bar requests from a Store. Cache failures are logged and bypassed.
type CachedFetcher struct {
	Provider
	Store cache.Store
	TTL   time.Duration
}

// NewCachedFetcher wraps p with store.
func NewCachedFetcher(p Provider, store cache.Store, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{Provider: p, Store: store, TTL: ttl}
}

func (c *CachedFetcher) Name() string { return c.Provider.Name() + "+cache" }

func barsKey(symbol, period, interval string) string {
	return fmt.Sprintf("bars:%s:%s:%s", symbol, period, interval)
}

func (c *CachedFetcher) FetchBars(ctx context.Context, symbol, period, interval string) ([]model.Bar, error) {
	key := barsKey(symbol, period, interval)

	payload, ok, err := c.Store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	if ok {
		var bars []model.Bar
		if err := json.Unmarshal(payload, &bars); err == nil {
			log.Debug().Str("key", key).Msg("cache hit")
			return bars, nil
		}
		log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	}

	bars, err := c.Provider.FetchBars(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(bars)
	if err != nil {
		return bars, nil
	}
	if err := c.Store.Set(ctx, key, data, c.TTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return bars, nil
}
