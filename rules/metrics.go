package rules

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// turnDuration tracks how long one engine pass takes.
	turnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "corridor_turn_duration_seconds",
		Help:    "Selection engine duration per turn in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
	})

	// turnModes counts turns by prioritization mode.
	turnModes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corridor_turn_mode_total",
		Help: "Turns by prioritization mode",
	}, []string{"mode"})

	// candidateOutcomes counts Phase B candidates by the filter that
	// rejected them, or "approved".
	candidateOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corridor_candidates_total",
		Help: "Candidate evaluations by outcome",
	}, []string{"outcome"})

	// revalidations counts Phase A commitments kept or dropped.
	revalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corridor_revalidations_total",
		Help: "Commitment revalidations by outcome",
	}, []string{"outcome"})

	// commitments is the size of the committed target set after a turn.
	commitments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "corridor_commitments",
		Help: "Committed targets after the last turn",
	})
)
