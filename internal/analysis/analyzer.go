package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"StockAdvisor/internal/aggregator"
	"StockAdvisor/internal/collector"
	"StockAdvisor/internal/metrics"
	"StockAdvisor/internal/model"
)

// Analyzer runs the full pipeline for one request: metadata, price history, recommendations.
type Analyzer struct {
	Provider        collector.Provider
	Collector       *collector.Collector
	Aggregator      *aggregator.Aggregator
	Metrics         *metrics.Recorder
	MetadataWorkers int
}

// NewAnalyzer wires an Analyzer. rec may be nil.
func NewAnalyzer(p collector.Provider, col *collector.Collector, agg *aggregator.Aggregator, rec *metrics.Recorder, workers int) *Analyzer {
	if workers < 1 {
		workers = 1
	}
	return &Analyzer{
		Provider:        p,
		Collector:       col,
		Aggregator:      agg,
		Metrics:         rec,
		MetadataWorkers: workers,
	}
}

// ParseSymbols splits comma-separated input and normalizes it with NormalizeSymbols.
func ParseSymbols(input string) []string {
	return NormalizeSymbols(strings.Split(input, ","))
}

// NormalizeSymbols trims and upper-cases each symbol, and drops empty entries and repeats
// while keeping first-seen order.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, part := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(part))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

// Run analyzes symbols with budget. Symbols are normalized first. When the price fetch fails as a whole, the returned result
// still carries the information table and err is a *model.FetchFailureError.
func (a *Analyzer) Run(ctx context.Context, symbols []string, budget float64) (res *model.AnalysisResult, err error) {
	start := time.Now()
	defer func() { a.Metrics.ObserveRun(res, err, time.Since(start)) }()

	symbols = NormalizeSymbols(symbols)
	if len(symbols) == 0 {
		return nil, model.ErrNoSymbols
	}
	if !(budget > 0) || math.IsInf(budget, 0) {
		return nil, fmt.Errorf("%w: got %v", model.ErrInvalidBudget, budget)
	}

	res = &model.AnalysisResult{
		RunID:       uuid.NewString(),
		GeneratedAt: start.UTC(),
		Budget:      budget,
		Symbols:     symbols,
		Counts:      model.NewRecommendationCounts(),
	}
	logger := log.With().Str("run_id", res.RunID).Logger()
	logger.Info().Strs("symbols", symbols).Float64("budget", budget).Msg("analysis started")

	info, warnings := a.describeAll(ctx, symbols)
	res.Info = info
	res.Warnings = append(res.Warnings, warnings...)

	priceData, err := a.Collector.Collect(ctx, symbols)
	if err != nil {
		logger.Error().Err(err).Msg("price fetch failed")
		return res, err
	}

	sum := a.Aggregator.Run(symbols, priceData, budget)
	res.Recommendations = sum.Records
	res.Counts = sum.Counts
	res.Allocations = sum.Allocations
	res.Charts = sum.Charts
	res.Warnings = append(res.Warnings, sum.Warnings...)

	logger.Info().
		Int("buy", res.Counts[model.RecommendBuy]).
		Int("sell", res.Counts[model.RecommendSell]).
		Int("hold", res.Counts[model.RecommendHold]).
		Int("warnings", len(res.Warnings)).
		Dur("elapsed", time.Since(start)).
		Msg("analysis finished")
	return res, nil
}

// RunInput parses free-text symbols before running.
func (a *Analyzer) RunInput(ctx context.Context, input string, budget float64) (*model.AnalysisResult, error) {
	return a.Run(ctx, ParseSymbols(input), budget)
}

// describeAll fetches metadata concurrently and returns the rows in symbol order.
// Lookup failures become warnings and never fail the run.
func (a *Analyzer) describeAll(ctx context.Context, symbols []string) ([]model.InfoRow, []model.Warning) {
	infos := make([]*model.StockInfo, len(symbols))
	errs := make([]error, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.MetadataWorkers)
	for i, sym := range symbols {
		g.Go(func() error {
			info, err := a.Provider.Describe(gctx, sym)
			if err == nil && info == nil {
				err = fmt.Errorf("%s: empty metadata: %w", sym, model.ErrSymbolNotFound)
			}
			if err != nil {
				errs[i] = err
				return nil
			}
			infos[i] = info
			return nil
		})
	}
	_ = g.Wait()

	rows := make([]model.InfoRow, 0, len(symbols))
	var warnings []model.Warning
	for i, sym := range symbols {
		if errs[i] != nil {
			log.Warn().Err(errs[i]).Str("symbol", sym).Msg("details could not be retrieved")
			warnings = append(warnings, model.Warning{
				Symbol:  sym,
				Kind:    model.WarnSymbolNotFound,
				Message: fmt.Sprintf("Details for %s could not be retrieved.", sym),
			})
			continue
		}
		info := *infos[i]
		if info.Symbol == "" {
			info.Symbol = sym
		}
		rows = append(rows, model.NewInfoRow(&info))
	}
	return rows, warnings
}
