// Package metrics defines the Prometheus collectors for the fee engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecalculationsTotal counts membership recalculations by outcome:
	// "changed", "unchanged" or "error".
	RecalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memberfees_recalculations_total",
		Help: "Membership state recalculations by outcome.",
	}, []string{"outcome"})

	// StateTransitionsTotal counts persisted state transitions by the
	// state written.
	StateTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memberfees_state_transitions_total",
		Help: "Persisted membership state transitions by new state.",
	}, []string{"state"})

	// FeeCalculationDuration observes the wall time of fee aggregations,
	// snapshot fetch included.
	FeeCalculationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "memberfees_fee_calculation_seconds",
		Help:    "Duration of annual fee calculations by operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)
