package slo

import (
	"math"
	"slices"
	"sync"
	"time"
)

// defaultSampleSize bounds the latency samples kept per window.
const defaultSampleSize = 4096

// Snapshot is the set of indicators computed for one window.
type Snapshot struct {
	Requests     int
	Errors       int
	Availability float64
	ErrorRate    float64
	P95          time.Duration
	P99          time.Duration
}

// Tracker accumulates request outcomes between flushes.
// Latencies beyond the sample size overwrite the oldest samples.
type Tracker struct {
	mu        sync.Mutex
	requests  int
	errors    int
	latencies []time.Duration
	next      int
	size      int
}

// NewTracker returns a tracker keeping up to size latency samples.
func NewTracker(size int) *Tracker {
	if size <= 0 {
		size = defaultSampleSize
	}
	return &Tracker{size: size, latencies: make([]time.Duration, 0, size)}
}

// Observe records one served request.
func (t *Tracker) Observe(status int, latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests++
	if status >= 500 {
		t.errors++
	}
	if len(t.latencies) < t.size {
		t.latencies = append(t.latencies, latency)
		return
	}
	t.latencies[t.next] = latency
	t.next = (t.next + 1) % t.size
}

// Flush computes the window's snapshot, publishes it to the SLO gauges and
// starts a new window. An empty window reports full availability.
func (t *Tracker) Flush() Snapshot {
	t.mu.Lock()
	s := Snapshot{Requests: t.requests, Errors: t.errors}
	samples := slices.Clone(t.latencies)
	t.requests, t.errors, t.next = 0, 0, 0
	t.latencies = t.latencies[:0]
	t.mu.Unlock()

	s.Availability = 1
	if s.Requests > 0 {
		s.ErrorRate = float64(s.Errors) / float64(s.Requests)
		s.Availability = 1 - s.ErrorRate
	}
	slices.Sort(samples)
	s.P95 = quantile(samples, 0.95)
	s.P99 = quantile(samples, 0.99)

	publish(s)
	return s
}

// quantile returns the nearest-rank quantile of sorted samples.
func quantile(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(q*float64(len(sorted)))) - 1
	rank = max(0, min(rank, len(sorted)-1))
	return sorted[rank]
}
