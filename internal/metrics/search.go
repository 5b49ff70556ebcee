// Package metrics defines the Prometheus collectors of the talent-search service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "talent_search"

// Retrieval orchestrator metrics.
var (
	SearchAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_attempts_total",
			Help:      "Résumé search attempts by stage and outcome",
		},
		[]string{"stage", "outcome"}, // stage: primary/fallback/strategy; outcome: found/empty/error
	)

	SearchAttemptDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_attempt_duration_seconds",
			Help:      "Résumé search attempt duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"stage"},
	)

	SearchFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_fallbacks_total",
			Help:      "Relaxed fallback searches triggered by an empty first page",
		},
	)

	KeywordExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keyword_extractions_total",
			Help:      "LLM keyword extractions by provider and result",
		},
		[]string{"provider", "result"}, // result: success/api_error/malformed
	)

	KeywordCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keyword_cache_total",
			Help:      "Keyword memo lookups",
		},
		[]string{"result"}, // "hit" / "store_hit" / "miss"
	)
)

func init() {
	prometheus.MustRegister(SearchAttemptsTotal)
	prometheus.MustRegister(SearchAttemptDuration)
	prometheus.MustRegister(SearchFallbacksTotal)
	prometheus.MustRegister(KeywordExtractionsTotal)
	prometheus.MustRegister(KeywordCacheTotal)
}
