// Package metrics declares the prometheus collectors of the intervention
// engine. Collectors register on the default registry at init.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cascade step labels
const (
	StepEnsureStubs = "ensure_stubs"
	StepGenerate    = "generate"
	StepBackfill    = "backfill"
)

// Bootstrap outcome labels
const (
	OutcomeReconciled = "reconciled"
	OutcomeUnchanged  = "unchanged"
	OutcomeFailed     = "failed"
)

var (
	responsesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intervention_responses_recorded_total",
		Help: "Recorded intervention responses by correctness",
	}, []string{"correct"})

	plansCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intervention_plans_completed_total",
		Help: "Intervention plans that reached 100 percent completion",
	})

	plansSuperseded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intervention_plans_superseded_total",
		Help: "Intervention plans archived by a newer plan or a healing pass",
	})

	cascadeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_cascade_failures_total",
		Help: "Failed analysis cascade steps by step",
	}, []string{"step"})

	cascadeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "analysis_cascade_duration_seconds",
		Help:    "Wall time of one full analysis cascade",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	bootstrapStudents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bootstrap_students_total",
		Help: "Students visited by the bootstrap reconciliation by outcome",
	}, []string{"outcome"})
)

func ResponseRecorded(correct bool) {
	responsesRecorded.WithLabelValues(strconv.FormatBool(correct)).Inc()
}

func PlanCompleted() {
	plansCompleted.Inc()
}

func PlansSuperseded(n int) {
	if n > 0 {
		plansSuperseded.Add(float64(n))
	}
}

func CascadeStepFailed(step string) {
	cascadeFailures.WithLabelValues(step).Inc()
}

func ObserveCascade(seconds float64) {
	cascadeDuration.Observe(seconds)
}

func BootstrapStudent(outcome string) {
	bootstrapStudents.WithLabelValues(outcome).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
