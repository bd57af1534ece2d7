package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"StockAdvisor/internal/model"
)

func TestObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	res := &model.AnalysisResult{
		Counts:   model.RecommendationCounts{model.RecommendBuy: 2, model.RecommendSell: 0, model.RecommendHold: 1},
		Warnings: []model.Warning{{Symbol: "X", Kind: model.WarnSymbolNotFound}},
	}
	r.ObserveRun(res, nil, time.Second)
	r.ObserveRun(nil, errors.New("boom"), time.Second)

	if got := testutil.ToFloat64(r.runsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("expected 1 successful run, got %v", got)
	}
	if got := testutil.ToFloat64(r.runsTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("expected 1 failed run, got %v", got)
	}
	if got := testutil.ToFloat64(r.recommendations.WithLabelValues("Buy")); got != 2 {
		t.Errorf("expected 2 buys, got %v", got)
	}
	if got := testutil.ToFloat64(r.skippedSymbols.WithLabelValues("symbol_not_found")); got != 1 {
		t.Errorf("expected 1 skipped symbol, got %v", got)
	}

	var nilRecorder *Recorder
	nilRecorder.ObserveRun(res, nil, time.Second)
}
