package calculator

import (
	"errors"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"

	"StockAdvisor/internal/model"
)

var errNonPositivePeriod = errors.New("period must be positive")

// CalculateSMA computes the simple moving average of the most recent period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errNonPositivePeriod
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	return stat.Mean(prices[len(prices)-period:], nil), nil
}

// MovingAverage returns the rolling simple moving average aligned to prices.
// Index i holds CalculateSMA over prices[:i+1] and is invalid while fewer than period values exist.
// A series shorter than period yields all-invalid values, never an error.
func MovingAverage(prices []float64, period int) ([]null.Float, error) {
	if period <= 0 {
		return nil, errNonPositivePeriod
	}
	out := make([]null.Float, len(prices))
	for i := period - 1; i < len(prices); i++ {
		sma, err := CalculateSMA(prices[:i+1], period)
		if err != nil {
			return nil, err
		}
		out[i] = null.FloatFrom(sma)
	}
	return out, nil
}

// SeriesSMA computes the rolling SMA over a series' close prices.
func SeriesSMA(series *model.PriceSeries, period int) ([]null.Float, error) {
	if series == nil {
		return MovingAverage(nil, period)
	}
	return MovingAverage(series.Closes(), period)
}
