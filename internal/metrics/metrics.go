// Package metrics provides Prometheus metrics for the credibility service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScoresTotal counts scoring operations by entry point and outcome.
	ScoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ziptales",
			Name:      "scores_total",
			Help:      "Total number of credibility scores computed",
		},
		[]string{"mode", "status"},
	)

	// ScoreValue observes the distribution of overall scores.
	ScoreValue = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ziptales",
			Name:      "score_value",
			Help:      "Distribution of overall credibility scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"mode"},
	)

	// CacheLookups counts result cache lookups by outcome.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ziptales",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by outcome",
		},
		[]string{"result"},
	)

	// AttestationLookups counts attestation gateway calls by outcome.
	AttestationLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ziptales",
			Name:      "attestation_lookups_total",
			Help:      "Attestation lookups by outcome",
		},
		[]string{"result"},
	)

	// BatchArticles counts articles handled by ingest and rescore runs.
	BatchArticles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ziptales",
			Name:      "batch_articles_total",
			Help:      "Articles processed by batch jobs",
		},
		[]string{"job", "status"},
	)
)

// RecordScore records one computed score.
func RecordScore(mode string, score int) {
	ScoresTotal.WithLabelValues(mode, "ok").Inc()
	ScoreValue.WithLabelValues(mode).Observe(float64(score))
}

// RecordScoreError records a failed scoring request.
func RecordScoreError(mode string) {
	ScoresTotal.WithLabelValues(mode, "error").Inc()
}

// RecordCache records a cache hit or miss.
func RecordCache(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}

// RecordAttestation records an attestation lookup outcome ("attested", "absent", "error", "cached").
func RecordAttestation(result string) {
	AttestationLookups.WithLabelValues(result).Inc()
}

// RecordBatch records one article handled by a batch job.
func RecordBatch(job, status string) {
	BatchArticles.WithLabelValues(job, status).Inc()
}
