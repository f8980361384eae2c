package promhooks

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := New(reg, Options{Namespace: "app", Name: "users"})
	require.NoError(t, err)

	h.Miss("k")
	h.Stored("k", 30*time.Second)
	h.Hit("k")
	h.Hit("k")
	h.Bypassed("k", true)
	h.Bypassed("k", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(h.events.WithLabelValues(EventHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.events.WithLabelValues(EventMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.events.WithLabelValues(EventStored)))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.events.WithLabelValues(EventBypassed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.evicted))

	expected := `
# HELP app_cachecall_bypass_evictions_total Entries deleted because caching was disabled for a call.
# TYPE app_cachecall_bypass_evictions_total counter
app_cachecall_bypass_evictions_total{cache="users"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "app_cachecall_bypass_evictions_total"))
}

func TestSeriesPrecreated(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg, Options{})
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "cachecall_events_total")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestReRegisterReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(reg, Options{Name: "x"})
	require.NoError(t, err)
	b, err := New(reg, Options{Name: "x"})
	require.NoError(t, err)

	a.Hit("k")
	b.Hit("k")
	assert.Equal(t, 2.0, testutil.ToFloat64(a.events.WithLabelValues(EventHit)))
}
