// Package metrics collects request and sync counters for a single run.
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Collector collects and manages metrics.
type Collector struct {
	mu        sync.RWMutex
	counters  map[string]*Counter
	gauges    map[string]*Gauge
	timers    map[string]*Timer
	startTime time.Time
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		counters:  make(map[string]*Counter),
		gauges:    make(map[string]*Gauge),
		timers:    make(map[string]*Timer),
		startTime: time.Now(),
	}
}

// Counter is a monotonically increasing counter.
type Counter struct {
	value atomic.Int64
}

// Inc increments the counter by 1.
func (c *Counter) Inc() { c.value.Add(1) }

// Add adds n to the counter.
func (c *Counter) Add(n int64) { c.value.Add(n) }

// Value returns the current counter value.
func (c *Counter) Value() int64 { return c.value.Load() }

// Gauge holds the last value set.
type Gauge struct {
	mu    sync.Mutex
	value float64
}

// Set sets the gauge value.
func (g *Gauge) Set(v float64) {
	g.mu.Lock()
	g.value = v
	g.mu.Unlock()
}

// Value returns the current gauge value.
func (g *Gauge) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

// Histogram collects distribution of values.
type Histogram struct {
	values []float64
	mu     sync.Mutex
	max    int
}

// NewHistogram creates a new histogram with max values capacity.
func NewHistogram(maxValues int) *Histogram {
	return &Histogram{
		values: make([]float64, 0, maxValues),
		max:    maxValues,
	}
}

// Observe records a value in the histogram.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.values) >= h.max {
		// Rotate: discard oldest
		h.values = h.values[1:]
	}
	h.values = append(h.values, v)
}

// Stats returns histogram statistics.
func (h *Histogram) Stats() HistogramStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.values) == 0 {
		return HistogramStats{}
	}

	sorted := make([]float64, len(h.values))
	copy(sorted, h.values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	n := len(sorted)
	return HistogramStats{
		Count: n,
		Min:   sorted[0],
		Max:   sorted[n-1],
		Avg:   sum / float64(n),
		P50:   sorted[n*50/100],
		P90:   sorted[n*90/100],
	}
}

// HistogramStats contains histogram statistics.
type HistogramStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	P50   float64 `json:"p50"`
	P90   float64 `json:"p90"`
}

// Timer measures durations in seconds.
type Timer struct {
	histogram *Histogram
}

// Start starts a new timer context.
func (t *Timer) Start() *TimerContext {
	return &TimerContext{timer: t, start: time.Now()}
}

// Observe records an externally measured duration.
func (t *Timer) Observe(d time.Duration) {
	t.histogram.Observe(d.Seconds())
}

// Stats returns the recorded durations in seconds.
func (t *Timer) Stats() HistogramStats {
	return t.histogram.Stats()
}

// TimerContext represents an active timer.
type TimerContext struct {
	timer *Timer
	start time.Time
}

// Stop stops the timer and records the duration.
func (tc *TimerContext) Stop() time.Duration {
	d := time.Since(tc.start)
	tc.timer.Observe(d)
	return d
}

// Counter returns or creates a counter.
func (c *Collector) Counter(name string) *Counter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if counter, ok := c.counters[name]; ok {
		return counter
	}
	counter := &Counter{}
	c.counters[name] = counter
	return counter
}

// Gauge returns or creates a gauge.
func (c *Collector) Gauge(name string) *Gauge {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gauge, ok := c.gauges[name]; ok {
		return gauge
	}
	gauge := &Gauge{}
	c.gauges[name] = gauge
	return gauge
}

// Timer returns or creates a timer.
func (c *Collector) Timer(name string) *Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timer, ok := c.timers[name]; ok {
		return timer
	}
	timer := &Timer{histogram: NewHistogram(1000)}
	c.timers[name] = timer
	return timer
}

// Snapshot is a point-in-time copy of every metric.
type Snapshot struct {
	Uptime   string                    `json:"uptime"`
	Counters map[string]int64          `json:"counters"`
	Gauges   map[string]float64        `json:"gauges"`
	Timers   map[string]HistogramStats `json:"timers"`
}

// Snapshot copies the current values.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Uptime:   time.Since(c.startTime).Round(time.Millisecond).String(),
		Counters: make(map[string]int64, len(c.counters)),
		Gauges:   make(map[string]float64, len(c.gauges)),
		Timers:   make(map[string]HistogramStats, len(c.timers)),
	}
	for name, counter := range c.counters {
		snap.Counters[name] = counter.Value()
	}
	for name, gauge := range c.gauges {
		snap.Gauges[name] = gauge.Value()
	}
	for name, timer := range c.timers {
		snap.Timers[name] = timer.Stats()
	}
	return snap
}

// Export exports metrics to JSON.
func (c *Collector) Export() ([]byte, error) {
	return json.MarshalIndent(c.Snapshot(), "", "  ")
}

// WriteSummary prints a short human readable summary, one metric per line.
func (c *Collector) WriteSummary(w io.Writer) error {
	snap := c.Snapshot()
	if _, err := fmt.Fprintf(w, "Metrics (uptime %s)\n", snap.Uptime); err != nil {
		return err
	}
	for _, name := range sortedKeys(snap.Counters) {
		if _, err := fmt.Fprintf(w, "  %-40s %d\n", name, snap.Counters[name]); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(snap.Gauges) {
		if _, err := fmt.Fprintf(w, "  %-40s %g\n", name, snap.Gauges[name]); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(snap.Timers) {
		stats := snap.Timers[name]
		if _, err := fmt.Fprintf(w, "  %-40s n=%d avg=%.3fs max=%.3fs\n", name, stats.Count, stats.Avg, stats.Max); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
