package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	require.NoError(t, m.Track("refresh").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("refresh").End(boom), boom)

	require.Equal(t, float64(1), testutil.ToFloat64(m.runs.WithLabelValues("refresh", "success")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.runs.WithLabelValues("refresh", "failure")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.failures.WithLabelValues("refresh")))
	require.Greater(t, testutil.ToFloat64(m.lastSuccess.WithLabelValues("refresh")), float64(0))
}

func TestTrackerSkip(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	tr := m.Track("refresh")
	tr.Skip()
	require.NoError(t, tr.End(nil))

	require.Equal(t, float64(1), testutil.ToFloat64(m.runs.WithLabelValues("refresh", "skipped")))
	require.Zero(t, testutil.ToFloat64(m.lastSuccess.WithLabelValues("refresh")))
	require.Zero(t, testutil.CollectAndCount(m.duration))
}

func TestSkipDoesNotHideFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	tr := m.Track("refresh")
	tr.Skip()
	boom := errors.New("boom")
	require.ErrorIs(t, tr.End(boom), boom)
	require.Equal(t, float64(1), testutil.ToFloat64(m.failures.WithLabelValues("refresh")))
}

func TestNilMetricsTrackerPassesErrorThrough(t *testing.T) {
	var m *Metrics
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("refresh").End(boom), boom)
}
