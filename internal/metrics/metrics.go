package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var once sync.Once

var (
	// AnalysesTotal counts completed analysis calls by result
	// (ok, fallback, error).
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mealscan",
		Subsystem: "vision",
		Name:      "analyses_total",
		Help:      "Total number of meal analyses, labeled by result.",
	}, []string{"result"})

	// RetriesTotal counts vision provider retries.
	RetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mealscan",
		Subsystem: "vision",
		Name:      "provider_retries_total",
		Help:      "Total number of vision provider call retries.",
	})

	// AnalysisDurationSeconds is end-to-end time per analysis call.
	AnalysisDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mealscan",
		Subsystem: "vision",
		Name:      "analysis_duration_seconds",
		Help:      "End-to-end time to analyze one meal photo.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})

	// EnrichmentLookupsTotal counts composition database lookups by outcome
	// (matched, unmatched, error).
	EnrichmentLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mealscan",
		Subsystem: "enrich",
		Name:      "lookups_total",
		Help:      "Total number of composition database lookups, labeled by outcome.",
	}, []string{"outcome"})
)

// Register registers all collectors with the default registry. Safe to call
// more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalysesTotal,
			RetriesTotal,
			AnalysisDurationSeconds,
			EnrichmentLookupsTotal,
		)
	})
}
