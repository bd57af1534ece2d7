package strategy

import (
	"fmt"
	"math"

	"github.com/guregu/null/v6"

	"StockAdvisor/internal/calculator"
	"StockAdvisor/internal/model"
)

// Default moving-average windows.
const (
	DefaultFastWindow = 20
	DefaultSlowWindow = 50
)

// Engine turns one symbol's price series into a recommendation.
type Engine struct {
	FastWindow int
	SlowWindow int
}

// NewEngine creates an engine with the given windows, falling back to the defaults for non-positive values.
func NewEngine(fast, slow int) *Engine {
	if fast <= 0 {
		fast = DefaultFastWindow
	}
	if slow <= 0 {
		slow = DefaultSlowWindow
	}
	return &Engine{FastWindow: fast, SlowWindow: slow}
}

var defaultEngine = NewEngine(DefaultFastWindow, DefaultSlowWindow)

// Evaluate runs the default SMA 20/50 engine.
func Evaluate(series *model.PriceSeries, budget float64) (*model.RecommendationRecord, error) {
	return defaultEngine.Evaluate(series, budget)
}

// Indicators holds the derived series for one symbol.
type Indicators struct {
	Fast       []null.Float
	Slow       []null.Float
	Crossovers []model.CrossoverEvent
}

// Analyze computes both moving averages and every crossover in the series.
func (e *Engine) Analyze(series *model.PriceSeries) (*Indicators, error) {
	fast, err := calculator.SeriesSMA(series, e.FastWindow)
	if err != nil {
		return nil, fmt.Errorf("fast SMA: %w", err)
	}
	slow, err := calculator.SeriesSMA(series, e.SlowWindow)
	if err != nil {
		return nil, fmt.Errorf("slow SMA: %w", err)
	}
	var bars []model.Bar
	if series != nil {
		bars = series.Bars
	}
	return &Indicators{
		Fast:       fast,
		Slow:       slow,
		Crossovers: calculator.DetectCrossovers(bars, fast, slow),
	}, nil
}

// Evaluate derives the recommendation record from the crossover state at the latest bar.
// Only the final index decides the recommendation; the descriptive prices cover the whole series.
func (e *Engine) Evaluate(series *model.PriceSeries, budget float64) (*model.RecommendationRecord, error) {
	latest, ok := series.Latest()
	if !ok {
		return nil, fmt.Errorf("%w: empty series", model.ErrInsufficientData)
	}
	if !isUsablePrice(latest.Close) {
		return nil, fmt.Errorf("%w: no valid close at %s", model.ErrInsufficientData, latest.Time.Format("2006-01-02"))
	}
	if !(budget > 0) || math.IsInf(budget, 0) {
		return nil, fmt.Errorf("%w: got %v", model.ErrInvalidBudget, budget)
	}

	ind, err := e.Analyze(series)
	if err != nil {
		return nil, err
	}

	high, low, err := calculator.CalculateSeriesRange(series.Bars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInsufficientData, err)
	}

	rec, reason := e.recommend(ind, len(series.Bars)-1)

	return &model.RecommendationRecord{
		Symbol:         series.Symbol,
		Open:           Round2(latest.Open),
		Close:          Round2(latest.Close),
		High:           Round2(high),
		Low:            Round2(low),
		Recommendation: rec,
		Reason:         reason,
		Quantity:       AffordableQuantity(budget, latest.Close),
	}, nil
}

func (e *Engine) recommend(ind *Indicators, last int) (model.Recommendation, string) {
	dir, crossed := calculator.CrossoverAt(ind.Fast, ind.Slow, last)
	switch {
	case crossed && dir == model.CrossBullish:
		return model.RecommendBuy, fmt.Sprintf(
			"Short-term moving average (SMA %d) crossed above long-term moving average (SMA %d).",
			e.FastWindow, e.SlowWindow)
	case crossed && dir == model.CrossBearish:
		return model.RecommendSell, fmt.Sprintf(
			"Short-term moving average (SMA %d) crossed below long-term moving average (SMA %d).",
			e.FastWindow, e.SlowWindow)
	default:
		return model.RecommendHold, HoldReason
	}
}

// HoldReason explains a Hold recommendation.
const HoldReason = "No significant crossover in moving averages to suggest a Buy or Sell action."

// AffordableQuantity is floor(budget / price), never negative and capped at math.MaxInt64.
func AffordableQuantity(budget, price float64) int64 {
	if !isUsablePrice(price) || !(budget > 0) {
		return 0
	}
	q := math.Floor(budget / price)
	if q >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(q)
}

func isUsablePrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}
