package aggregator

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"StockAdvisor/internal/model"
	"StockAdvisor/internal/strategy"
)

// Summary is the aggregated output of one run over all requested symbols.
type Summary struct {
	Records     []model.RecommendationRecord
	Counts      model.RecommendationCounts
	Allocations []model.Allocation
	Charts      []model.ChartData
	Warnings    []model.Warning
}

// Aggregator evaluates every requested symbol with one engine.
type Aggregator struct {
	Engine *strategy.Engine
}

// New creates an Aggregator. A nil engine uses the default SMA 20/50 windows.
func New(engine *strategy.Engine) *Aggregator {
	if engine == nil {
		engine = strategy.NewEngine(strategy.DefaultFastWindow, strategy.DefaultSlowWindow)
	}
	return &Aggregator{Engine: engine}
}

// Run evaluates symbols in the given order. Symbols without usable data are skipped with a warning;
// the counts always sum to the number of records.
func (a *Aggregator) Run(symbols []string, priceData map[string]model.FetchResult, budget float64) *Summary {
	sum := &Summary{
		Records:     make([]model.RecommendationRecord, 0, len(symbols)),
		Counts:      model.NewRecommendationCounts(),
		Allocations: make([]model.Allocation, 0, len(symbols)),
	}

	for _, sym := range symbols {
		res, ok := priceData[sym]
		if !ok {
			sum.skip(model.Warning{
				Symbol:  sym,
				Kind:    model.WarnSymbolNotFound,
				Message: fmt.Sprintf("Data for %s is unavailable. Skipping...", sym),
			})
			continue
		}
		if res.Err != nil {
			sum.skip(model.WarningFor(sym, res.Err))
			continue
		}
		if res.Series.Len() == 0 {
			sum.skip(model.Warning{
				Symbol:  sym,
				Kind:    model.WarnInsufficientData,
				Message: fmt.Sprintf("No price data available for %s. Skipping...", sym),
			})
			continue
		}

		rec, err := a.Engine.Evaluate(res.Series, budget)
		if err != nil {
			w := model.WarningFor(sym, err)
			if !errors.Is(err, model.ErrInsufficientData) {
				log.Error().Err(err).Str("symbol", sym).Msg("evaluate failed")
			}
			sum.skip(w)
			continue
		}

		sum.Records = append(sum.Records, *rec)
		sum.Counts[rec.Recommendation]++
		sum.Allocations = append(sum.Allocations, model.Allocation{Symbol: sym, Quantity: rec.Quantity})

		if chart, err := a.chart(res.Series); err != nil {
			log.Warn().Err(err).Str("symbol", sym).Msg("chart data unavailable")
		} else {
			sum.Charts = append(sum.Charts, *chart)
		}
	}
	return sum
}

// Run aggregates with the default engine.
func Run(symbols []string, priceData map[string]model.FetchResult, budget float64) *Summary {
	return New(nil).Run(symbols, priceData, budget)
}

func (s *Summary) skip(w model.Warning) {
	log.Warn().Str("symbol", w.Symbol).Str("kind", string(w.Kind)).Msg(w.Message)
	s.Warnings = append(s.Warnings, w)
}

func (a *Aggregator) chart(series *model.PriceSeries) (*model.ChartData, error) {
	ind, err := a.Engine.Analyze(series)
	if err != nil {
		return nil, err
	}
	cd := &model.ChartData{
		Symbol: series.Symbol,
		Times:  make([]time.Time, len(series.Bars)),
		Close:  series.Closes(),
		Fast:   ind.Fast,
		Slow:   ind.Slow,
	}
	for i, b := range series.Bars {
		cd.Times[i] = b.Time
	}
	for _, ev := range ind.Crossovers {
		if ev.Direction == model.CrossBullish {
			cd.Buys = append(cd.Buys, ev)
		} else {
			cd.Sells = append(cd.Sells, ev)
		}
	}
	return cd, nil
}
