package collector

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"StockAdvisor/internal/model"
)

// PeriodDays converts a lookback such as "5d", "2wk", "6mo" or "1y" into calendar days.
func PeriodDays(period string) (int, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	units := []struct {
		suffix string
		days   int
	}{
		{"wk", 7},
		{"mo", 30},
		{"d", 1},
		{"y", 365},
	}
	for _, u := range units {
		if !strings.HasSuffix(p, u.suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(p, u.suffix))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid period %q", period)
		}
		return n * u.days, nil
	}
	return 0, fmt.Errorf("invalid period %q", period)
}

// normalizeBars sorts bars chronologically and keeps only the last bar for each timestamp.
func normalizeBars(bars []model.Bar) []model.Bar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// aggregateDailyToWeekly converts daily bars into weekly bars (ISO weeks).
func aggregateDailyToWeekly(daily []model.Bar) []model.Bar {
	if len(daily) == 0 {
		return nil
	}
	var weekly []model.Bar
	week := daily[0]
	for _, d := range daily[1:] {
		dy, dw := d.Time.ISOWeek()
		cy, cw := week.Time.ISOWeek()
		if dy != cy || dw != cw {
			weekly = append(weekly, week)
			week = d
			continue
		}
		if d.High > week.High {
			week.High = d.High
		}
		if d.Low < week.Low {
			week.Low = d.Low
		}
		week.Close = d.Close
		week.Volume += d.Volume
	}
	return append(weekly, week)
}
