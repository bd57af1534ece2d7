package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// ChartData carries everything needed to plot a symbol's price with both averages and crossover markers.
type ChartData struct {
	Symbol string           `json:"symbol"`
	Times  []time.Time      `json:"times"`
	Close  []float64        `json:"close"`
	Fast   []null.Float     `json:"fast"`
	Slow   []null.Float     `json:"slow"`
	Buys   []CrossoverEvent `json:"buys"`
	Sells  []CrossoverEvent `json:"sells"`
}

// Allocation is the affordable quantity for one symbol.
type Allocation struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

// AnalysisResult is the complete output of one analysis run.
type AnalysisResult struct {
	RunID           string                 `json:"run_id"`
	GeneratedAt     time.Time              `json:"generated_at"`
	Budget          float64                `json:"budget"`
	Symbols         []string               `json:"symbols"`
	Info            []InfoRow              `json:"info"`
	Recommendations []RecommendationRecord `json:"recommendations"`
	Counts          RecommendationCounts   `json:"counts"`
	Allocations     []Allocation           `json:"allocations"`
	Charts          []ChartData            `json:"charts"`
	Warnings        []Warning              `json:"warnings"`
}
