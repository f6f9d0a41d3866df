package txprobe

import "time"

// Metrics captures probe-level telemetry.
type Metrics interface {
	// ObserveUnitDuration records the time to process one work item.
	ObserveUnitDuration(duration time.Duration)
	// AddCommitted increments the count of units whose scope was completed.
	AddCommitted(count int)
	// AddAborted increments the count of units abandoned after an induced failure.
	AddAborted(count int)
	// AddFailed increments the count of units that hit an unexpected failure.
	AddFailed(count int)
	// AddDepthWarnings increments the count of anomalous depth observations.
	AddDepthWarnings(count int)
	// AddSubmitted increments the count of successor items submitted to the queue.
	AddSubmitted(count int)
	// SetSurvivors updates the count of business rows that outlived a rollback.
	SetSurvivors(count int)
}

// NopMetrics is a no-op metrics recorder.
type NopMetrics struct{}

// ObserveUnitDuration implements Metrics.
func (NopMetrics) ObserveUnitDuration(time.Duration) {}

// AddCommitted implements Metrics.
func (NopMetrics) AddCommitted(int) {}

// AddAborted implements Metrics.
func (NopMetrics) AddAborted(int) {}

// AddFailed implements Metrics.
func (NopMetrics) AddFailed(int) {}

// AddDepthWarnings implements Metrics.
func (NopMetrics) AddDepthWarnings(int) {}

// AddSubmitted implements Metrics.
func (NopMetrics) AddSubmitted(int) {}

// SetSurvivors implements Metrics.
func (NopMetrics) SetSurvivors(int) {}
