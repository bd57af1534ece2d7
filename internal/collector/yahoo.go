package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"StockAdvisor/internal/model"
)

const (
	yahooChartURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	yahooSummaryURL = "https://query2.finance.yahoo.com/v10/finance/quoteSummary"
	summaryModules  = "assetProfile,summaryDetail,financialData,defaultKeyStatistics,price"
)

// YahooFetcher implements Provider using the Yahoo Finance public API.
type YahooFetcher struct {
	Client     *http.Client
	ChartURL   string
	SummaryURL string
	SymbolMap  map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		ChartURL:   yahooChartURL,
		SummaryURL: yahooSummaryURL,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"NIFTY":  "^NSEI",
			"SENSEX": "^BSESN",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// notFound reports whether Yahoo is telling us the ticker does not exist.
func (e *yahooError) notFound() bool {
	return e != nil && strings.EqualFold(e.Code, "Not Found")
}

// yahooChart is the response structure from Yahoo Finance chart API. Missing prices arrive as JSON null.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []null.Float `json:"open"`
					High   []null.Float `json:"high"`
					Low    []null.Float `json:"low"`
					Close  []null.Float `json:"close"`
					Volume []null.Float `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

func at(vals []null.Float, i int) null.Float {
	if i < len(vals) {
		return vals[i]
	}
	return null.Float{}
}

func (f *YahooFetcher) get(ctx context.Context, u string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("yahoo read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// FetchBars downloads bars for period (e.g. "6mo") at interval ("1d" or "1wk").
func (f *YahooFetcher) FetchBars(ctx context.Context, symbol, period, interval string) ([]model.Bar, error) {
	u := fmt.Sprintf("%s/%s?interval=%s&range=%s",
		f.ChartURL, url.PathEscape(f.yahooSymbol(symbol)), url.QueryEscape(interval), url.QueryEscape(period))

	body, status, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(body, &chart)
	if status == http.StatusNotFound || (decodeErr == nil && chart.Chart.Error.notFound()) {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, model.ErrSymbolNotFound)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", status, string(body))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("yahoo decode: %w", decodeErr)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo %s: no data returned: %w", symbol, model.ErrSymbolNotFound)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.Bar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if !c.Valid {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, model.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   orElse(at(quote.Open, i), c.Float64),
			High:   orElse(at(quote.High, i), c.Float64),
			Low:    orElse(at(quote.Low, i), c.Float64),
			Close:  c.Float64,
			Volume: at(quote.Volume, i).ValueOrZero(),
		})
	}
	return normalizeBars(bars), nil
}

func orElse(v null.Float, fallback float64) float64 {
	if v.Valid {
		return v.Float64
	}
	return fallback
}

// yahooValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper; raw is absent when the value is unknown.
type yahooValue struct {
	Raw null.Float `json:"raw"`
}

type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				LongBusinessSummary string `json:"longBusinessSummary"`
			} `json:"assetProfile"`
			SummaryDetail struct {
				MarketCap     yahooValue `json:"marketCap"`
				TrailingPE    yahooValue `json:"trailingPE"`
				DividendYield yahooValue `json:"dividendYield"`
			} `json:"summaryDetail"`
			FinancialData struct {
				CurrentPrice   yahooValue `json:"currentPrice"`
				ReturnOnEquity yahooValue `json:"returnOnEquity"`
				ReturnOnAssets yahooValue `json:"returnOnAssets"`
			} `json:"financialData"`
			DefaultKeyStatistics struct {
				BookValue yahooValue `json:"bookValue"`
			} `json:"defaultKeyStatistics"`
			Price struct {
				RegularMarketPrice yahooValue `json:"regularMarketPrice"`
			} `json:"price"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

// Describe fetches the company profile and key ratios for symbol.
func (f *YahooFetcher) Describe(ctx context.Context, symbol string) (*model.StockInfo, error) {
	u := fmt.Sprintf("%s/%s?modules=%s", f.SummaryURL, url.PathEscape(f.yahooSymbol(symbol)), summaryModules)

	body, status, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var summary yahooSummary
	decodeErr := json.Unmarshal(body, &summary)
	if status == http.StatusNotFound || (decodeErr == nil && summary.QuoteSummary.Error.notFound()) {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, model.ErrSymbolNotFound)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("yahoo summary: status %d, body: %s", status, string(body))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("yahoo summary decode: %w", decodeErr)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: empty summary: %w", symbol, model.ErrSymbolNotFound)
	}

	r := summary.QuoteSummary.Result[0]
	return &model.StockInfo{
		Symbol:             symbol,
		LongDescription:    r.AssetProfile.LongBusinessSummary,
		MarketCap:          r.SummaryDetail.MarketCap.Raw,
		CurrentPrice:       r.FinancialData.CurrentPrice.Raw,
		PERatio:            r.SummaryDetail.TrailingPE.Raw,
		BookValue:          r.DefaultKeyStatistics.BookValue.Raw,
		DividendYield:      r.SummaryDetail.DividendYield.Raw,
		ReturnOnEquity:     r.FinancialData.ReturnOnEquity.Raw,
		ReturnOnAssets:     r.FinancialData.ReturnOnAssets.Raw,
		RegularMarketPrice: r.Price.RegularMarketPrice.Raw,
	}, nil
}
