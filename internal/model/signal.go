package model

import "time"

// Recommendation is the action derived from the latest moving-average crossover state.
type Recommendation string

const (
	RecommendBuy  Recommendation = "Buy"
	RecommendSell Recommendation = "Sell"
	RecommendHold Recommendation = "Hold"
)

// Recommendations lists every label in display order.
var Recommendations = []Recommendation{RecommendBuy, RecommendSell, RecommendHold}

// CrossDirection tells which way the fast average crossed the slow one.
type CrossDirection string

const (
	CrossBullish CrossDirection = "bullish"
	CrossBearish CrossDirection = "bearish"
)

// CrossoverEvent marks a bar where the fast and slow averages swapped order.
type CrossoverEvent struct {
	Index     int            `json:"index"`
	Time      time.Time      `json:"time"`
	Price     float64        `json:"price"`
	Direction CrossDirection `json:"direction"`
}

// RecommendationRecord is one row of the recommendation table.
type RecommendationRecord struct {
	Symbol         string         `json:"symbol"`
	Open           float64        `json:"open"`
	Close          float64        `json:"close"`
	High           float64        `json:"high"`
	Low            float64        `json:"low"`
	Recommendation Recommendation `json:"recommendation"`
	Reason         string         `json:"reason"`
	Quantity       int64          `json:"quantity"`
}

// RecommendationCounts tallies records per label.
type RecommendationCounts map[Recommendation]int

// NewRecommendationCounts returns counts with every label present at zero.
func NewRecommendationCounts() RecommendationCounts {
	c := make(RecommendationCounts, len(Recommendations))
	for _, r := range Recommendations {
		c[r] = 0
	}
	return c
}

// Total sums all counts.
func (c RecommendationCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}
