// Package metrics provides Prometheus counters for snapshot store activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager owns the store's collectors. A nil *Manager is valid and records
// nothing.
type Manager struct {
	namespace string
	registry  prometheus.Registerer

	snapshotWrites  *prometheus.CounterVec
	snapshotLoads   *prometheus.CounterVec
	resultsRecorded prometheus.Counter
	personalBests   *prometheus.CounterVec
	xpAwarded       prometheus.Counter
	notifications   prometheus.Counter
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithRegistry sets the registry collectors are registered with.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// NewManager creates and registers the collectors. It defaults to a private
// registry so several managers can coexist in one process.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "typeledger",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.snapshotWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "snapshot",
		Name:      "writes_total",
		Help:      "Snapshot writes to local storage by outcome.",
	}, []string{"outcome"})
	m.snapshotLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "snapshot",
		Name:      "loads_total",
		Help:      "Snapshot loads from local storage by outcome.",
	}, []string{"outcome"})
	m.resultsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "results",
		Name:      "recorded_total",
		Help:      "Results appended to the snapshot.",
	})
	m.personalBests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "results",
		Name:      "personal_bests_total",
		Help:      "Personal best upserts by scope.",
	}, []string{"scope"})
	m.xpAwarded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "results",
		Name:      "xp_awarded_total",
		Help:      "Experience points added to the snapshot.",
	})
	m.notifications = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "snapshot",
		Name:      "notifications_total",
		Help:      "Snapshot-updated notifications dispatched.",
	})

	m.registry.MustRegister(
		m.snapshotWrites,
		m.snapshotLoads,
		m.resultsRecorded,
		m.personalBests,
		m.xpAwarded,
		m.notifications,
	)
	return m
}

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeMissing  = "missing"
	OutcomeMismatch = "mismatch"
)

// PB scopes.
const (
	ScopeGlobal = "global"
	ScopeTag    = "tag"
)

// SnapshotWrite counts a write with the given outcome.
func (m *Manager) SnapshotWrite(outcome string) {
	if m == nil {
		return
	}
	m.snapshotWrites.WithLabelValues(outcome).Inc()
}

// SnapshotLoad counts a load with the given outcome.
func (m *Manager) SnapshotLoad(outcome string) {
	if m == nil {
		return
	}
	m.snapshotLoads.WithLabelValues(outcome).Inc()
}

// ResultRecorded counts an ingested result.
func (m *Manager) ResultRecorded() {
	if m == nil {
		return
	}
	m.resultsRecorded.Inc()
}

// PersonalBest counts a PB upsert.
func (m *Manager) PersonalBest(scope string) {
	if m == nil {
		return
	}
	m.personalBests.WithLabelValues(scope).Inc()
}

// XPAwarded adds xp to the awarded total.
func (m *Manager) XPAwarded(xp int) {
	if m == nil || xp <= 0 {
		return
	}
	m.xpAwarded.Add(float64(xp))
}

// Notification counts a dispatched notification.
func (m *Manager) Notification() {
	if m == nil {
		return
	}
	m.notifications.Inc()
}

// Gatherer returns the registry as a gatherer when it supports gathering.
func (m *Manager) Gatherer() (prometheus.Gatherer, bool) {
	if m == nil {
		return nil, false
	}
	g, ok := m.registry.(prometheus.Gatherer)
	return g, ok
}
