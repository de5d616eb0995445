package webauth

import "sync/atomic"

// MetricID indexes a single engine counter.
type MetricID uint16

const (
	// MetricRegisterSuccess counts completed registrations.
	MetricRegisterSuccess MetricID = iota
	// MetricRegisterDuplicate counts registrations rejected for a taken username.
	MetricRegisterDuplicate
	// MetricRegisterFailure counts registrations failed for any other reason.
	MetricRegisterFailure
	// MetricLoginSuccess counts logins that issued a token.
	MetricLoginSuccess
	// MetricLoginFailure counts logins rejected for a wrong password.
	MetricLoginFailure
	// MetricLoginUnknownUser counts logins for usernames with no account.
	MetricLoginUnknownUser
	// MetricTokenMalformed counts session tokens rejected as unreadable.
	MetricTokenMalformed
	// MetricTokenExpired counts session tokens rejected as expired.
	MetricTokenExpired
	// MetricResolveAuthenticated counts session resolutions yielding an identity.
	MetricResolveAuthenticated
	// MetricResolveAnonymous counts session resolutions yielding no identity.
	MetricResolveAnonymous
	// MetricCacheHit counts user-cache reads served from the cache.
	MetricCacheHit
	// MetricCacheMiss counts user-cache reads that fell through to the store.
	MetricCacheMiss
	// MetricCacheDegraded counts cache operations skipped or failed while the backend was unreachable.
	MetricCacheDegraded
	// MetricLogout counts completed logouts.
	MetricLogout
	metricIDCount
)

const cacheLineSize = 64

// paddedCounter keeps each counter on its own cache line so hot metrics
// do not false-share under concurrent load.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is the engine's in-process counter set.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

func newMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Get returns the current value of one counter.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter at one point in time. Counters are read
// individually, so a snapshot taken under load is approximate.
func (m *Metrics) Snapshot() map[MetricID]uint64 {
	snap := make(map[MetricID]uint64, metricIDCount)
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snap
}
