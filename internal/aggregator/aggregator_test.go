package aggregator

import (
	"fmt"
	"testing"
	"time"

	"StockAdvisor/internal/model"
	"StockAdvisor/internal/strategy"
)

func series(symbol string, closes ...float64) *model.PriceSeries {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	s := &model.PriceSeries{Symbol: symbol}
	for i, c := range closes {
		s.Bars = append(s.Bars, model.Bar{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c})
	}
	return s
}

func ok(s *model.PriceSeries) model.FetchResult { return model.FetchResult{Series: s} }

func assertCountsMatch(t *testing.T, sum *Summary) {
	t.Helper()
	if sum.Counts.Total() != len(sum.Records) {
		t.Errorf("counts total %d != records %d", sum.Counts.Total(), len(sum.Records))
	}
	for _, r := range model.Recommendations {
		if _, present := sum.Counts[r]; !present {
			t.Errorf("counts missing label %s", r)
		}
	}
}

func TestRun_PreservesOrderAndSkipsMissing(t *testing.T) {
	data := map[string]model.FetchResult{
		"MSFT": ok(series("MSFT", 300, 310)),
		"AAPL": ok(series("AAPL", 150)),
		"TSLA": ok(series("TSLA", 200)),
	}
	sum := Run([]string{"TSLA", "GHOST", "AAPL", "MSFT"}, data, 1000)

	want := []string{"TSLA", "AAPL", "MSFT"}
	if len(sum.Records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(sum.Records))
	}
	for i, sym := range want {
		if sum.Records[i].Symbol != sym {
			t.Errorf("record %d: expected %s, got %s", i, sym, sum.Records[i].Symbol)
		}
		if sum.Allocations[i].Symbol != sym {
			t.Errorf("allocation %d: expected %s, got %s", i, sym, sum.Allocations[i].Symbol)
		}
	}
	if len(sum.Warnings) != 1 || sum.Warnings[0].Symbol != "GHOST" || sum.Warnings[0].Kind != model.WarnSymbolNotFound {
		t.Errorf("expected one not-found warning for GHOST, got %+v", sum.Warnings)
	}
	if sum.Counts[model.RecommendHold] != 3 {
		t.Errorf("expected 3 Hold, got %d", sum.Counts[model.RecommendHold])
	}
	assertCountsMatch(t, sum)
}

func TestRun_AllSkipped(t *testing.T) {
	data := map[string]model.FetchResult{
		"EMPTY": ok(&model.PriceSeries{Symbol: "EMPTY"}),
		"NILS":  {},
		"ERR":   {Err: fmt.Errorf("lookup: %w", model.ErrSymbolNotFound)},
		"ZERO":  ok(series("ZERO", 10, 0)),
	}
	sum := Run([]string{"EMPTY", "NILS", "ERR", "ZERO", "ABSENT"}, data, 500)
	if len(sum.Records) != 0 {
		t.Fatalf("expected no records, got %d", len(sum.Records))
	}
	if sum.Counts.Total() != 0 {
		t.Errorf("expected zero counts, got %v", sum.Counts)
	}
	if len(sum.Warnings) != 5 {
		t.Fatalf("expected 5 warnings, got %d: %+v", len(sum.Warnings), sum.Warnings)
	}
	kinds := map[string]model.WarningKind{
		"EMPTY":  model.WarnInsufficientData,
		"NILS":   model.WarnInsufficientData,
		"ERR":    model.WarnSymbolNotFound,
		"ZERO":   model.WarnInsufficientData,
		"ABSENT": model.WarnSymbolNotFound,
	}
	for _, w := range sum.Warnings {
		if kinds[w.Symbol] != w.Kind {
			t.Errorf("%s: expected kind %s, got %s", w.Symbol, kinds[w.Symbol], w.Kind)
		}
	}
	assertCountsMatch(t, sum)
}

func TestRun_CountsAndCharts(t *testing.T) {
	closes := make([]float64, 0, 76)
	for i := 0; i < 60; i++ {
		closes = append(closes, float64(160-i))
	}
	for i := 60; i < 76; i++ {
		closes = append(closes, float64(101+3*(i-59)))
	}
	data := map[string]model.FetchResult{
		"BUY":  ok(series("BUY", closes...)),
		"HOLD": ok(series("HOLD", 50, 51, 52)),
	}
	sum := New(strategy.NewEngine(20, 50)).Run([]string{"BUY", "HOLD"}, data, 1000)
	if sum.Counts[model.RecommendBuy] != 1 || sum.Counts[model.RecommendHold] != 1 || sum.Counts[model.RecommendSell] != 0 {
		t.Errorf("unexpected counts %v", sum.Counts)
	}
	assertCountsMatch(t, sum)

	if len(sum.Charts) != 2 {
		t.Fatalf("expected 2 charts, got %d", len(sum.Charts))
	}
	buyChart := sum.Charts[0]
	if len(buyChart.Times) != len(closes) || len(buyChart.Fast) != len(closes) || len(buyChart.Slow) != len(closes) {
		t.Errorf("chart series misaligned: %d times, %d fast, %d slow", len(buyChart.Times), len(buyChart.Fast), len(buyChart.Slow))
	}
	if len(buyChart.Buys) != 1 || buyChart.Buys[0].Index != 75 {
		t.Errorf("expected a buy marker at index 75, got %+v", buyChart.Buys)
	}
	if len(buyChart.Sells) != 0 {
		t.Errorf("expected no sell markers, got %+v", buyChart.Sells)
	}

	if sum.Allocations[0].Quantity != sum.Records[0].Quantity {
		t.Errorf("allocation quantity should mirror the record")
	}
}

func TestRun_InvalidBudgetSkipsEverything(t *testing.T) {
	data := map[string]model.FetchResult{"AAPL": ok(series("AAPL", 100))}
	sum := Run([]string{"AAPL"}, data, 0)
	if len(sum.Records) != 0 || len(sum.Warnings) != 1 {
		t.Errorf("expected the symbol to be skipped, got %d records %d warnings", len(sum.Records), len(sum.Warnings))
	}
	assertCountsMatch(t, sum)
}
