package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"StockAdvisor/internal/model"
)

// Recorder tracks analysis runs with Prometheus collectors.
type Recorder struct {
	runsTotal       *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	skippedSymbols  *prometheus.CounterVec
	runDuration     prometheus.Histogram
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockadvisor_runs_total",
				Help: "Total number of analysis runs by outcome",
			},
			[]string{"outcome"},
		),
		recommendations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockadvisor_recommendations_total",
				Help: "Recommendations issued by label",
			},
			[]string{"recommendation"},
		),
		skippedSymbols: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockadvisor_skipped_symbols_total",
				Help: "Symbols skipped during analysis by reason",
			},
			[]string{"kind"},
		),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockadvisor_run_duration_seconds",
			Help:    "Duration of analysis runs in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveRun records the outcome of one run. A nil recorder is a no-op.
func (r *Recorder) ObserveRun(res *model.AnalysisResult, err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	r.runsTotal.WithLabelValues(outcome).Inc()
	r.runDuration.Observe(elapsed.Seconds())

	if res == nil {
		return
	}
	for label, n := range res.Counts {
		r.recommendations.WithLabelValues(string(label)).Add(float64(n))
	}
	for _, w := range res.Warnings {
		r.skippedSymbols.WithLabelValues(string(w.Kind)).Inc()
	}
}
