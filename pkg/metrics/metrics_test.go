package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveCycle("new", 2*time.Second)
	m.ObserveCycle("new", time.Second)
	m.ObserveCycle("unchanged", time.Second)
	m.Degraded("summarize")
	m.EntitiesInserted(3)
	m.EntitiesInserted(0)
	m.DedupHit()
	m.PromptTokens(120)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cycles.WithLabelValues("new")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues("unchanged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.degraded.WithLabelValues("summarize")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.entitiesInserted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dedupHits))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.promptTokens))
}

func TestSucceeded(t *testing.T) {
	m := New()
	at := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	m.Succeeded(at)

	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(m.lastSuccess))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveCycle("empty", 10*time.Millisecond)
	m.Degraded("collect")

	path := filepath.Join(t.TempDir(), "textfile", "harvest.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `harvest_cycles_total{outcome="empty"} 1`)
	assert.Contains(t, string(data), `harvest_degraded_operations_total{operation="collect"} 1`)
	assert.Contains(t, string(data), "harvest_cycle_duration_seconds_count 1")
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.DedupHit()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.dedupHits))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.dedupHits))
}
