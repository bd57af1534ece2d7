package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"StockAdvisor/internal/aggregator"
	"StockAdvisor/internal/analysis"
	"StockAdvisor/internal/collector"
	"StockAdvisor/internal/metrics"
	"StockAdvisor/internal/model"
)

type fakeRunner struct {
	input  string
	budget float64
	res    *model.AnalysisResult
	err    error
}

func (f *fakeRunner) RunInput(_ context.Context, input string, budget float64) (*model.AnalysisResult, error) {
	f.input = input
	f.budget = budget
	if len(analysis.ParseSymbols(input)) == 0 {
		return nil, model.ErrNoSymbols
	}
	return f.res, f.err
}

type decoded struct {
	Status int                   `json:"status"`
	Data   *model.AnalysisResult `json:"data"`
	Errors []validationError     `json:"errors"`
}

func serve(t *testing.T, s *Server, method, target, body string) (int, decoded) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	var out decoded
	if strings.HasPrefix(target, "/api/") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

func TestAnalyze_Get(t *testing.T) {
	r := &fakeRunner{res: &model.AnalysisResult{RunID: "abc", Counts: model.NewRecommendationCounts()}}
	s := NewServer(":0", NewHandler(r, 1000), nil)

	code, out := serve(t, s, http.MethodGet, "/api/v1/analysis?symbols=aapl,msft&budget=250", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if r.input != "aapl,msft" || r.budget != 250 {
		t.Errorf("runner got input=%q budget=%v", r.input, r.budget)
	}
	if out.Data == nil || out.Data.RunID != "abc" {
		t.Errorf("unexpected data %+v", out.Data)
	}
}

func TestAnalyze_PostDefaultBudget(t *testing.T) {
	r := &fakeRunner{res: &model.AnalysisResult{}}
	s := NewServer(":0", NewHandler(r, 1000), nil)

	code, _ := serve(t, s, http.MethodPost, "/api/v1/analysis", `{"symbols":"TSLA"}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if r.budget != 1000 {
		t.Errorf("expected default budget 1000, got %v", r.budget)
	}
}

func TestAnalyze_BadRequests(t *testing.T) {
	s := NewServer(":0", NewHandler(&fakeRunner{}, 1000), nil)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		code   string
	}{
		{"missing symbols", http.MethodGet, "/api/v1/analysis", "", "ERR_REQUIRED"},
		{"zero budget", http.MethodPost, "/api/v1/analysis", `{"symbols":"AAPL","budget":0}`, "ERR_GT"},
		{"negative budget", http.MethodGet, "/api/v1/analysis?symbols=AAPL&budget=-5", "", "ERR_GT"},
		{"blank symbols", http.MethodGet, "/api/v1/analysis?symbols=,%20,", "", "ERR_NO_SYMBOLS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := serve(t, s, tt.method, tt.target, tt.body)
			if status != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", status)
			}
			if len(out.Errors) == 0 || out.Errors[0].Code != tt.code {
				t.Errorf("expected error code %s, got %+v", tt.code, out.Errors)
			}
		})
	}
}

func TestAnalyze_NonFiniteBudget(t *testing.T) {
	m := &collector.MockFetcher{Price: 100}
	a := analysis.NewAnalyzer(m, collector.NewCollector(m, "6mo", "1d"), aggregator.New(nil), nil, 1)
	s := NewServer(":0", NewHandler(a, 1000), nil)

	for _, target := range []string{
		"/api/v1/analysis?symbols=AAPL&budget=Inf",
		"/api/v1/analysis?symbols=AAPL&budget=%2BInf",
	} {
		code, out := serve(t, s, http.MethodGet, target, "")
		if code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, code)
		}
		if len(out.Errors) == 0 || out.Errors[0].Code != "ERR_INVALID_BUDGET" {
			t.Errorf("%s: expected ERR_INVALID_BUDGET, got %+v", target, out.Errors)
		}
	}
	if m.Calls.Load() != 0 {
		t.Errorf("no prices should be fetched for an invalid budget, got %d calls", m.Calls.Load())
	}
}

func TestAnalyze_FetchFailure(t *testing.T) {
	partial := &model.AnalysisResult{Info: []model.InfoRow{{Symbol: "AAPL"}}}
	r := &fakeRunner{res: partial, err: &model.FetchFailureError{Err: errors.New("timeout")}}
	s := NewServer(":0", NewHandler(r, 1000), nil)

	code, out := serve(t, s, http.MethodGet, "/api/v1/analysis?symbols=AAPL", "")
	if code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", code)
	}
	if out.Data == nil || len(out.Data.Info) != 1 {
		t.Errorf("partial result should be returned, got %+v", out.Data)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveRun(&model.AnalysisResult{Counts: model.NewRecommendationCounts()}, nil, 0)
	s := NewServer(":0", NewHandler(&fakeRunner{}, 1000), reg)

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "stockadvisor_runs_total") {
		t.Errorf("metrics endpoint missing run counter: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRecover(t *testing.T) {
	s := NewServer(":0", NewHandler(&fakeRunner{}, 1000), nil)
	s.Echo().GET("/boom", func(echo.Context) error { panic("boom") })

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
