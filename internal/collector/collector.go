package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"StockAdvisor/internal/model"
)

// Collector fetches price history for a batch of symbols over a fixed window.
type Collector struct {
	Fetcher  Fetcher
	Period   string
	Interval string
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, period, interval string) *Collector {
	return &Collector{Fetcher: fetcher, Period: period, Interval: interval}
}

// Collect fetches every symbol and returns a per-symbol outcome.
// Unknown symbols are recorded in their FetchResult; any other failure aborts the whole batch
// with a *model.FetchFailureError.
func (c *Collector) Collect(ctx context.Context, symbols []string) (map[string]model.FetchResult, error) {
	out := make(map[string]model.FetchResult, len(symbols))
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, &model.FetchFailureError{Err: err}
		}

		bars, err := c.Fetcher.FetchBars(ctx, sym, c.Period, c.Interval)
		if errors.Is(err, model.ErrSymbolNotFound) {
			log.Warn().Str("symbol", sym).Str("source", c.Fetcher.Name()).Msg("symbol not found")
			out[sym] = model.FetchResult{Err: err}
			continue
		}
		if err != nil {
			return nil, &model.FetchFailureError{Err: fmt.Errorf("%s: %w", sym, err)}
		}

		log.Debug().Str("symbol", sym).Int("bars", len(bars)).Msg("price history fetched")
		out[sym] = model.FetchResult{Series: &model.PriceSeries{
			Symbol:    sym,
			Bars:      bars,
			FetchedAt: time.Now(),
		}}
	}
	return out, nil
}
