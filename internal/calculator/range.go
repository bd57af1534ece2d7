package calculator

import (
	"errors"
	"math"

	"StockAdvisor/internal/model"
)

// CalculateRange scans the most recent lookback bars and returns the highest high and lowest low.
// A lookback <= 0 scans the whole series.
func CalculateRange(bars []model.Bar, lookback int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	n := len(bars)
	start := 0
	if lookback > 0 && n > lookback {
		start = n - lookback
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// CalculateSeriesRange returns the high and low over the full series.
func CalculateSeriesRange(bars []model.Bar) (high, low float64, err error) {
	return CalculateRange(bars, 0)
}
