package calculator

import (
	"github.com/guregu/null/v6"

	"StockAdvisor/internal/model"
)

// CrossoverAt reports whether fast crossed slow at index i compared with i-1.
// Any invalid value in the comparison counts as no crossover.
func CrossoverAt(fast, slow []null.Float, i int) (model.CrossDirection, bool) {
	if i < 1 || i >= len(fast) || i >= len(slow) {
		return "", false
	}
	f, s := fast[i], slow[i]
	pf, ps := fast[i-1], slow[i-1]
	if !f.Valid || !s.Valid || !pf.Valid || !ps.Valid {
		return "", false
	}
	switch {
	case f.Float64 > s.Float64 && pf.Float64 <= ps.Float64:
		return model.CrossBullish, true
	case f.Float64 < s.Float64 && pf.Float64 >= ps.Float64:
		return model.CrossBearish, true
	}
	return "", false
}

// DetectCrossovers scans every bar and returns the crossover events in time order.
func DetectCrossovers(bars []model.Bar, fast, slow []null.Float) []model.CrossoverEvent {
	var events []model.CrossoverEvent
	for i := 1; i < len(bars); i++ {
		dir, ok := CrossoverAt(fast, slow, i)
		if !ok {
			continue
		}
		events = append(events, model.CrossoverEvent{
			Index:     i,
			Time:      bars[i].Time,
			Price:     bars[i].Close,
			Direction: dir,
		})
	}
	return events
}
