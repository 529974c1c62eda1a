package symsearch

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting search metrics.
// internal/telemetry provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordInsert is called after a set is closed in a direction.
	RecordInsert(d Direction, cost int, states float64)

	// RecordCutCheck is called after each cut check.
	RecordCutCheck(found bool, duration time.Duration)

	// RecordExtraction is called after a path, operator or heuristic
	// extraction. kind is one of "path", "operators", "heuristic".
	RecordExtraction(kind string, duration time.Duration, err error)

	// RecordStep is called after the driver expands one bucket.
	RecordStep(d Direction, cost int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(Direction, int, float64)          {}
func (NoopMetricsCollector) RecordCutCheck(bool, time.Duration)            {}
func (NoopMetricsCollector) RecordExtraction(string, time.Duration, error) {}
func (NoopMetricsCollector) RecordStep(Direction, int, time.Duration)      {}

// BasicMetricsCollector provides simple in-memory counters.
type BasicMetricsCollector struct {
	Inserts          atomic.Int64
	ClosedStates     atomic.Int64
	CutChecks        atomic.Int64
	CutsFound        atomic.Int64
	Extractions      atomic.Int64
	ExtractionErrors atomic.Int64
	Steps            atomic.Int64
	StepNanos        atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(_ Direction, _ int, states float64) {
	b.Inserts.Add(1)
	b.ClosedStates.Add(int64(states))
}

// RecordCutCheck implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCutCheck(found bool, _ time.Duration) {
	b.CutChecks.Add(1)
	if found {
		b.CutsFound.Add(1)
	}
}

// RecordExtraction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExtraction(_ string, _ time.Duration, err error) {
	b.Extractions.Add(1)
	if err != nil {
		b.ExtractionErrors.Add(1)
	}
}

// RecordStep implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStep(_ Direction, _ int, duration time.Duration) {
	b.Steps.Add(1)
	b.StepNanos.Add(duration.Nanoseconds())
}
