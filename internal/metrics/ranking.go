package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Ranking metrics.
var (
	RankingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_duration_seconds",
			Help:      "Time spent scoring and sorting one candidate set, excluding the query embedding",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"mode"},
	)

	RankingCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_candidates_total",
			Help:      "Candidates processed by the ranker, by outcome",
		},
		[]string{"outcome"}, // scored / skipped
	)

	RankingCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_calls_total",
			Help:      "Ranking calls by mode and status",
		},
		[]string{"mode", "status"}, // ok / cancelled / upstream_error / rejected
	)
)

var registerRankingOnce sync.Once

// RegisterRankingMetrics registers ranker metrics. Safe to call more than once.
func RegisterRankingMetrics() {
	registerRankingOnce.Do(func() {
		prometheus.MustRegister(RankingDuration, RankingCandidatesTotal, RankingCallsTotal)
	})
}
