package model

import (
	"strconv"

	"github.com/guregu/null/v6"
)

// NotAvailable is rendered for absent metadata values.
const NotAvailable = "N/A"

// StockInfo is the per-symbol metadata returned by a Describer. Any numeric field may be absent.
type StockInfo struct {
	Symbol             string     `json:"symbol"`
	LongDescription    string     `json:"long_description"`
	MarketCap          null.Float `json:"market_cap"`
	CurrentPrice       null.Float `json:"current_price"`
	PERatio            null.Float `json:"pe_ratio"`
	BookValue          null.Float `json:"book_value"`
	DividendYield      null.Float `json:"dividend_yield"`
	ReturnOnEquity     null.Float `json:"return_on_equity"`
	ReturnOnAssets     null.Float `json:"return_on_assets"`
	RegularMarketPrice null.Float `json:"regular_market_price"`
}

// InfoRow is one row of the information table, with ratios already scaled to percent.
// ROCE is sourced from returnOnEquity and ROE from returnOnAssets.
type InfoRow struct {
	Symbol           string     `json:"symbol"`
	MarketCap        null.Float `json:"market_cap"`
	CurrentPrice     null.Float `json:"current_price"`
	PERatio          null.Float `json:"pe_ratio"`
	BookValue        null.Float `json:"book_value"`
	DividendYieldPct null.Float `json:"dividend_yield_pct"`
	ROCEPct          null.Float `json:"roce_pct"`
	ROEPct           null.Float `json:"roe_pct"`
	FaceValue        null.Float `json:"face_value"`
	Description      string     `json:"description"`
}

// DescriptionUnavailable is used when the provider has no business summary.
const DescriptionUnavailable = "Description not available"

// NewInfoRow converts metadata into a display row.
func NewInfoRow(info *StockInfo) InfoRow {
	desc := info.LongDescription
	if desc == "" {
		desc = DescriptionUnavailable
	}
	return InfoRow{
		Symbol:           info.Symbol,
		MarketCap:        info.MarketCap,
		CurrentPrice:     info.CurrentPrice,
		PERatio:          info.PERatio,
		BookValue:        info.BookValue,
		DividendYieldPct: ScalePercent(info.DividendYield),
		ROCEPct:          ScalePercent(info.ReturnOnEquity),
		ROEPct:           ScalePercent(info.ReturnOnAssets),
		FaceValue:        info.RegularMarketPrice,
		Description:      desc,
	}
}

// ScalePercent multiplies a fractional ratio by 100. Absent values stay absent.
func ScalePercent(v null.Float) null.Float {
	if !v.Valid {
		return v
	}
	return null.FloatFrom(v.Float64 * 100)
}

// FormatValue renders v with prec decimals, or N/A when absent.
func FormatValue(v null.Float, prec int) string {
	if !v.Valid {
		return NotAvailable
	}
	return strconv.FormatFloat(v.Float64, 'f', prec, 64)
}
