package metrics

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	c := NewCollector()

	counter := c.Counter("test_counter")
	counter.Inc()
	counter.Inc()
	counter.Add(5)

	assert.Equal(t, int64(7), counter.Value())
	assert.Same(t, counter, c.Counter("test_counter"))
}

func TestCounter_Concurrent(t *testing.T) {
	counter := &Counter{}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				counter.Inc()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), counter.Value())
}

func TestGauge(t *testing.T) {
	g := NewCollector().Gauge("catalog")
	g.Set(240)
	assert.Equal(t, 240.0, g.Value())
}

func TestHistogram_Rotation(t *testing.T) {
	hist := NewHistogram(10)
	for i := 1; i <= 15; i++ {
		hist.Observe(float64(i))
	}

	stats := hist.Stats()
	assert.Equal(t, 10, stats.Count)
	assert.Equal(t, 6.0, stats.Min)
	assert.Equal(t, 15.0, stats.Max)
	assert.Equal(t, 10.5, stats.Avg)
}

func TestHistogram_Empty(t *testing.T) {
	assert.Equal(t, HistogramStats{}, NewHistogram(5).Stats())
}

func TestTimer(t *testing.T) {
	timer := NewCollector().Timer("request")

	ctx := timer.Start()
	time.Sleep(5 * time.Millisecond)
	d := ctx.Stop()
	timer.Observe(2 * time.Second)

	assert.GreaterOrEqual(t, d, 5*time.Millisecond)
	stats := timer.Stats()
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 2.0, stats.Max)
}

func TestExportJSON(t *testing.T) {
	c := NewCollector()
	c.Counter(MetricRequests).Add(4)
	c.Gauge(MetricCatalogSize).Set(240)
	c.Timer(MetricLatency).Observe(time.Second)

	data, err := c.Export()
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, int64(4), snap.Counters[MetricRequests])
	assert.Equal(t, 240.0, snap.Gauges[MetricCatalogSize])
	assert.Equal(t, 1, snap.Timers[MetricLatency].Count)
}

func TestWriteSummary(t *testing.T) {
	c := NewCollector()
	c.Counter(MetricBatchesSent).Add(3)
	c.Timer(MetricLatency).Observe(500 * time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, c.WriteSummary(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Metrics (uptime "))
	assert.Contains(t, out, MetricBatchesSent)
	assert.Contains(t, out, "n=1 avg=0.500s")
}

func TestGlobal(t *testing.T) {
	assert.Same(t, Global(), Global())
}

func BenchmarkCounter_Inc(b *testing.B) {
	counter := &Counter{}
	for i := 0; i < b.N; i++ {
		counter.Inc()
	}
}
