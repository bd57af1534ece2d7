package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/guregu/null/v6"

	"StockAdvisor/internal/model"
)

// RESTFetcher implements Provider against a generic bars REST API.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape of one bar.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// restProfile is the expected JSON shape of the profile endpoint; unknown values are null.
type restProfile struct {
	Description        string     `json:"description"`
	MarketCap          null.Float `json:"market_cap"`
	CurrentPrice       null.Float `json:"current_price"`
	PERatio            null.Float `json:"pe_ratio"`
	BookValue          null.Float `json:"book_value"`
	DividendYield      null.Float `json:"dividend_yield"`
	ReturnOnEquity     null.Float `json:"return_on_equity"`
	ReturnOnAssets     null.Float `json:"return_on_assets"`
	RegularMarketPrice null.Float `json:"regular_market_price"`
}

// FetchBars requests enough daily bars to cover period. Weekly bars are aggregated locally
// when the API has no weekly endpoint.
func (f *RESTFetcher) FetchBars(ctx context.Context, symbol, period, interval string) ([]model.Bar, error) {
	days, err := PeriodDays(period)
	if err != nil {
		return nil, err
	}

	if interval == "1wk" {
		endpoint := fmt.Sprintf("%s/api/v1/bars/weekly?symbol=%s&limit=%d", f.BaseURL, url.QueryEscape(symbol), days/7+1)
		bars, err := f.fetchBars(ctx, endpoint)
		if err == nil {
			return bars, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		daily, dailyErr := f.fetchDaily(ctx, symbol, days)
		if dailyErr != nil {
			return nil, fmt.Errorf("weekly fetch failed: %w; daily fallback also failed: %w", err, dailyErr)
		}
		return aggregateDailyToWeekly(daily), nil
	}
	return f.fetchDaily(ctx, symbol, days)
}

func (f *RESTFetcher) fetchDaily(ctx context.Context, symbol string, limit int) ([]model.Bar, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&limit=%d", f.BaseURL, url.QueryEscape(symbol), limit)
	return f.fetchBars(ctx, endpoint)
}

// Describe returns the symbol profile.
func (f *RESTFetcher) Describe(ctx context.Context, symbol string) (*model.StockInfo, error) {
	endpoint := fmt.Sprintf("%s/api/v1/profile?symbol=%s", f.BaseURL, url.QueryEscape(symbol))
	resp, err := f.do(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("profile %s: %w", symbol, model.ErrSymbolNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch profile: status %d", resp.StatusCode)
	}
	var p restProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &model.StockInfo{
		Symbol:             symbol,
		LongDescription:    p.Description,
		MarketCap:          p.MarketCap,
		CurrentPrice:       p.CurrentPrice,
		PERatio:            p.PERatio,
		BookValue:          p.BookValue,
		DividendYield:      p.DividendYield,
		ReturnOnEquity:     p.ReturnOnEquity,
		ReturnOnAssets:     p.ReturnOnAssets,
		RegularMarketPrice: p.RegularMarketPrice,
	}, nil
}

func (f *RESTFetcher) do(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	return f.Client.Do(req)
}

func (f *RESTFetcher) fetchBars(ctx context.Context, endpoint string) ([]model.Bar, error) {
	resp, err := f.do(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch bars: %w", model.ErrSymbolNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var raw []restBar
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.Bar, 0, len(raw))
	for _, rb := range raw {
		if rb.Close <= 0 {
			continue
		}
		bars = append(bars, model.Bar{
			Time:   time.Unix(rb.Timestamp, 0).UTC(),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		})
	}
	return normalizeBars(bars), nil
}
