// Package metrics provides Prometheus metrics for the analysis pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "comment_sentiment"

var (
	// RunsTotal counts pipeline runs by outcome (ok or an error kind).
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of analysis runs",
		},
		[]string{"outcome"},
	)

	// RunDuration measures end-to-end run duration.
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of analysis runs in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60},
		},
		[]string{"outcome"},
	)

	// StrategyAttempts counts comment retrieval attempts per strategy.
	StrategyAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_attempts_total",
			Help:      "Comment retrieval attempts by source, strategy and result",
		},
		[]string{"source", "strategy", "result"},
	)

	// CommentsRetrieved observes the number of clean comments per run.
	CommentsRetrieved = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "comments_retrieved",
			Help:      "Distribution of clean comments per run",
			Buckets:   []float64{1, 5, 10, 25, 50, 75, 100},
		},
	)

	// SummariesTotal counts summaries by producer (model or heuristic).
	SummariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Summaries by producer",
		},
		[]string{"source"},
	)

	// EventsPublished counts result events by status.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Result events published by status",
		},
		[]string{"status"},
	)
)

// RecordRun records a finished run.
func RecordRun(outcome string, seconds float64) {
	RunsTotal.WithLabelValues(outcome).Inc()
	RunDuration.WithLabelValues(outcome).Observe(seconds)
}

// RecordStrategyAttempt records one strategy attempt; result is "ok", "empty" or "error".
func RecordStrategyAttempt(source, strategy, result string) {
	StrategyAttempts.WithLabelValues(source, strategy, result).Inc()
}

// RecordComments records the clean comment count of a run.
func RecordComments(n int) {
	CommentsRetrieved.Observe(float64(n))
}

// RecordSummary records which producer supplied the summary.
func RecordSummary(source string) {
	SummariesTotal.WithLabelValues(source).Inc()
}

// RecordEvent records a result event publication.
func RecordEvent(status string) {
	EventsPublished.WithLabelValues(status).Inc()
}
