package collector

import (
	"context"

	"StockAdvisor/internal/model"
)

// Fetcher defines the interface for fetching price history.
// An unresolvable symbol is reported as model.ErrSymbolNotFound; any other error is a transport failure.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol, period, interval string) ([]model.Bar, error)
	Name() string
}

// Describer returns per-symbol metadata.
type Describer interface {
	Describe(ctx context.Context, symbol string) (*model.StockInfo, error)
}

// Provider is a data source offering both price history and metadata.
type Provider interface {
	Fetcher
	Describer
}
