package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a single counter or histogram slot.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginRateLimited
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricRefreshRateLimited
	MetricLogout
	MetricLogoutAll
	MetricSessionCreated
	MetricSessionRevoked
	MetricAccountCreationSuccess
	MetricAccountCreationDuplicate
	MetricPasswordChangeSuccess
	MetricPasswordChangeInvalidOld
	MetricPasswordChangeReuseRejected
	MetricNotifyFailure
	MetricValidateSuccess
	MetricValidateFailure
	MetricValidateLatency

	MetricIDCount
)

// bucketBounds are the upper bounds of the fixed latency buckets. The last
// bucket is +Inf.
var bucketBounds = [bucketCount - 1]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	time.Second,
}

const bucketCount = 8

// paddedCounter occupies a full cache line so adjacent counters never
// false-share under concurrent increments.
type paddedCounter struct {
	value atomic.Uint64
	_     [56]byte
}

// Config controls which metric features are active.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// Metrics holds atomic counters and an optional latency histogram. A nil
// or disabled Metrics turns every operation into a no-op.
type Metrics struct {
	enabled bool
	latency bool

	counters   [MetricIDCount]paddedCounter
	histograms [MetricIDCount][bucketCount]paddedCounter
}

// Snapshot is a point-in-time deep copy of all metric values.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// New creates a Metrics instance. When cfg.Enabled is false all operations
// are no-ops and Snapshot returns empty maps.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
		latency: cfg.Enabled && cfg.EnableLatency,
	}
}

// Inc atomically increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].value.Add(1)
}

// Observe records a latency sample into the histogram for id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.latency || id >= MetricIDCount {
		return
	}
	m.histograms[id][bucketIndex(d)].value.Add(1)
}

func bucketIndex(d time.Duration) int {
	for i, bound := range bucketBounds {
		if d <= bound {
			return i
		}
	}
	return bucketCount - 1
}

// Snapshot returns a deep copy of all counters and histograms. Counters that
// were never incremented are included with value zero so dashboards see a
// stable key set.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Counters:   make(map[MetricID]uint64, MetricIDCount),
		Histograms: make(map[MetricID][]uint64),
	}
	if m == nil || !m.enabled {
		return snap
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = m.counters[id].value.Load()
	}

	if m.latency {
		buckets := make([]uint64, bucketCount)
		var seen bool
		for i := range buckets {
			buckets[i] = m.histograms[MetricValidateLatency][i].value.Load()
			seen = seen || buckets[i] > 0
		}
		if seen {
			snap.Histograms[MetricValidateLatency] = buckets
		}
	}

	return snap
}
