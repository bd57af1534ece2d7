package collector

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"StockAdvisor/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// It is selected at runtime with data_source.provider: mock.
type MockFetcher struct {
	Price float64
	Bars  map[string][]model.Bar
	Info  map[string]*model.StockInfo
	// Err, when set, is returned by every FetchBars call.
	Err error
	// Known restricts generated data to these symbols; others are reported as not found.
	Known map[string]bool

	Calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(ctx context.Context, symbol, period, _ string) ([]model.Bar, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	if m.Known != nil && !m.Known[symbol] {
		return nil, fmt.Errorf("mock %s: %w", symbol, model.ErrSymbolNotFound)
	}
	days, err := PeriodDays(period)
	if err != nil {
		return nil, err
	}
	return generateMockBars(m.Price, days), nil
}

func (m *MockFetcher) Describe(_ context.Context, symbol string) (*model.StockInfo, error) {
	if info, ok := m.Info[symbol]; ok {
		return info, nil
	}
	if m.Known != nil && !m.Known[symbol] {
		return nil, fmt.Errorf("mock %s: %w", symbol, model.ErrSymbolNotFound)
	}
	return &model.StockInfo{Symbol: symbol}, nil
}

func generateMockBars(basePrice float64, count int) []model.Bar {
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -count)
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
