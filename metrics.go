package flowernursery

import (
	"sync/atomic"
	"time"
)

// MetricID defines a public type used by flowernursery APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricRegistrationSuccess is an exported constant or variable used by the flow controller.
	MetricRegistrationSuccess MetricID = iota
	// MetricRegistrationFailure is an exported constant or variable used by the flow controller.
	MetricRegistrationFailure
	// MetricLoginSuccess is an exported constant or variable used by the flow controller.
	MetricLoginSuccess
	// MetricLoginFailure is an exported constant or variable used by the flow controller.
	MetricLoginFailure
	// MetricLoginOtpSuccess is an exported constant or variable used by the flow controller.
	MetricLoginOtpSuccess
	// MetricLoginOtpFailure is an exported constant or variable used by the flow controller.
	MetricLoginOtpFailure
	// MetricResetOtpRequested is an exported constant or variable used by the flow controller.
	MetricResetOtpRequested
	// MetricResetOtpVerified is an exported constant or variable used by the flow controller.
	MetricResetOtpVerified
	// MetricResetOtpFailure is an exported constant or variable used by the flow controller.
	MetricResetOtpFailure
	// MetricPasswordResetSuccess is an exported constant or variable used by the flow controller.
	MetricPasswordResetSuccess
	// MetricPasswordResetFailure is an exported constant or variable used by the flow controller.
	MetricPasswordResetFailure
	// MetricValidationRejected is an exported constant or variable used by the flow controller.
	MetricValidationRejected
	// MetricServiceUnreachable is an exported constant or variable used by the flow controller.
	MetricServiceUnreachable
	// MetricFlowCreated is an exported constant or variable used by the flow controller.
	MetricFlowCreated
	// MetricFlowRedirect is an exported constant or variable used by the flow controller.
	MetricFlowRedirect
	// MetricLogout is an exported constant or variable used by the flow controller.
	MetricLogout
	// MetricSubmitLatency is an exported constant or variable used by the flow controller.
	MetricSubmitLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

// latencyBoundsMs are the inclusive upper bounds of the first seven latency
// buckets; the eighth bucket is open-ended.
var latencyBoundsMs = [histBucketCount - 1]int64{5, 10, 25, 50, 100, 250, 500}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics defines a public type used by flowernursery APIs.
//
// Counters are cache-line padded to keep concurrent submissions from
// contending on neighbouring IDs. The single latency histogram tracks
// MetricSubmitLatency only.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	submitLatency [histBucketCount]uint64
}

// MetricsSnapshot defines a public type used by flowernursery APIs.
//
// MetricsSnapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics describes the newmetrics operation and its observable behavior.
//
// NewMetrics may return an error when input validation, dependency calls, or security checks fail.
// NewMetrics does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled describes the enabled operation and its observable behavior.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled describes the latencyenabled operation and its observable behavior.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc describes the inc operation and its observable behavior.
//
// Inc is a no-op on a nil or disabled receiver and is safe for concurrent use.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe describes the observe operation and its observable behavior.
//
// Observe records d into the submission latency histogram; other IDs are
// ignored. Safe for concurrent use.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricSubmitLatency {
		return
	}
	atomic.AddUint64(&m.submitLatency[bucketIndex(d)], 1)
}

// Value describes the value operation and its observable behavior.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot returns a point-in-time copy; the maps are never nil, and a
// disabled receiver yields empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil || !m.enabled {
		return s
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.submitLatency[i])
		}
		s.Histograms[MetricSubmitLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()
	for i, bound := range latencyBoundsMs {
		if ms <= bound {
			return i
		}
	}
	return histBucketCount - 1
}
