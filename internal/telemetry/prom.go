// Package telemetry exports search metrics to Prometheus.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdrpinto/symsearch"
)

// Collector implements symsearch.MetricsCollector with Prometheus metrics.
type Collector struct {
	inserts      *prometheus.CounterVec
	closedStates *prometheus.CounterVec
	cutChecks    *prometheus.CounterVec
	cutDuration  prometheus.Histogram
	extractions  *prometheus.CounterVec
	extractTime  *prometheus.HistogramVec
	steps        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
}

var _ symsearch.MetricsCollector = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		inserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symsearch_closed_inserts_total",
			Help: "Sets closed, by direction.",
		}, []string{"direction"}),
		closedStates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symsearch_closed_states_total",
			Help: "States closed, by direction.",
		}, []string{"direction"}),
		cutChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symsearch_cut_checks_total",
			Help: "Cut checks, by outcome.",
		}, []string{"found"}),
		cutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "symsearch_cut_check_duration_seconds",
			Help:    "Duration of cut checks.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symsearch_extractions_total",
			Help: "Extractions, by kind and status.",
		}, []string{"kind", "status"}),
		extractTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "symsearch_extraction_duration_seconds",
			Help:    "Duration of extractions, by kind.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"kind"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symsearch_steps_total",
			Help: "Bucket expansions, by direction.",
		}, []string{"direction"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "symsearch_step_duration_seconds",
			Help:    "Duration of bucket expansions, by direction.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"direction"}),
	}
	for _, m := range []prometheus.Collector{
		c.inserts, c.closedStates, c.cutChecks, c.cutDuration,
		c.extractions, c.extractTime, c.steps, c.stepDuration,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordInsert implements symsearch.MetricsCollector.
func (c *Collector) RecordInsert(d symsearch.Direction, _ int, states float64) {
	c.inserts.WithLabelValues(d.String()).Inc()
	c.closedStates.WithLabelValues(d.String()).Add(states)
}

// RecordCutCheck implements symsearch.MetricsCollector.
func (c *Collector) RecordCutCheck(found bool, duration time.Duration) {
	label := "false"
	if found {
		label = "true"
	}
	c.cutChecks.WithLabelValues(label).Inc()
	c.cutDuration.Observe(duration.Seconds())
}

// RecordExtraction implements symsearch.MetricsCollector.
func (c *Collector) RecordExtraction(kind string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.extractions.WithLabelValues(kind, status).Inc()
	c.extractTime.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordStep implements symsearch.MetricsCollector.
func (c *Collector) RecordStep(d symsearch.Direction, _ int, duration time.Duration) {
	c.steps.WithLabelValues(d.String()).Inc()
	c.stepDuration.WithLabelValues(d.String()).Observe(duration.Seconds())
}
