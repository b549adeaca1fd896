// Package metrics exposes Prometheus instrumentation for the evaluation
// service. The engine itself carries no metrics; recording happens at the
// call sites in the handlers and the deadline sweep.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the service's Prometheus metrics.
type Collector struct {
	evaluations    *prometheus.CounterVec
	evaluationTime prometheus.Histogram
	claimsByStage  *prometheus.GaugeVec
	escalationsDue prometheus.Gauge
}

// NewCollector creates and registers the metrics on the given registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "claimcraft",
			Name:      "evaluations_total",
			Help:      "Claim evaluations performed, by resulting stage.",
		}, []string{"stage"}),
		evaluationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "claimcraft",
			Name:      "evaluation_duration_seconds",
			Help:      "Time spent evaluating a claim.",
			Buckets:   prometheus.DefBuckets,
		}),
		claimsByStage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "claimcraft",
			Name:      "claims_by_stage",
			Help:      "Stored claims currently in each workflow stage.",
		}, []string{"stage"}),
		escalationsDue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "claimcraft",
			Name:      "escalations_due",
			Help:      "Stored claims whose next action is due within the escalation window.",
		}),
	}

	reg.MustRegister(c.evaluations, c.evaluationTime, c.claimsByStage, c.escalationsDue)
	return c
}

// RecordEvaluation counts one evaluation and its duration.
func (c *Collector) RecordEvaluation(stage string, duration time.Duration) {
	c.evaluations.WithLabelValues(stage).Inc()
	c.evaluationTime.Observe(duration.Seconds())
}

// SetStageCounts replaces the per-stage gauge values after a sweep.
func (c *Collector) SetStageCounts(counts map[string]int) {
	c.claimsByStage.Reset()
	for stage, n := range counts {
		c.claimsByStage.WithLabelValues(stage).Set(float64(n))
	}
}

// SetEscalationsDue records how many claims are inside the escalation
// window.
func (c *Collector) SetEscalationsDue(n int) {
	c.escalationsDue.Set(float64(n))
}
