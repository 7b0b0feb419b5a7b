package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(WithRegistry(reg), WithNamespace("test"))

	m.SnapshotWrite(OutcomeOK)
	m.SnapshotWrite(OutcomeOK)
	m.SnapshotWrite(OutcomeError)
	m.SnapshotLoad(OutcomeMismatch)
	m.ResultRecorded()
	m.PersonalBest(ScopeTag)
	m.XPAwarded(120)
	m.XPAwarded(-5)
	m.Notification()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.snapshotWrites.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshotWrites.WithLabelValues(OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshotLoads.WithLabelValues(OutcomeMismatch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resultsRecorded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.personalBests.WithLabelValues(ScopeTag)))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.xpAwarded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications))

	g, ok := m.Gatherer()
	require.True(t, ok)
	families, err := g.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilManagerIsNoop(t *testing.T) {
	var m *Manager
	assert.NotPanics(t, func() {
		m.SnapshotWrite(OutcomeOK)
		m.SnapshotLoad(OutcomeOK)
		m.ResultRecorded()
		m.PersonalBest(ScopeGlobal)
		m.XPAwarded(1)
		m.Notification()
	})
	_, ok := m.Gatherer()
	assert.False(t, ok)
}
