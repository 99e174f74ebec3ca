// Package collector supervises long-running external-process telemetry
// sources (Apple powermetrics, Habana hl-smi) that are cheap to run once
// with an interval flag but expensive to invoke per scrape. Grounded in
// daemon/services/metrics/collector.go's TTL-cache pattern and
// daemon/lib/shell.go's stdout-pipe reader loop from the teacher, generalized
// per spec.md §4.4's ProcessManager/MetricsStore/DataCollector design.
package collector

import (
	"sync"
)

// Ring is a bounded FIFO buffer of raw sample strings, dropping the oldest
// entry on overflow (spec.md's BufferedSample).
type Ring struct {
	mu       sync.Mutex
	capacity int
	samples  []string
}

// NewRing constructs a ring with the given fixed capacity (spec.md: ~120).
func NewRing(capacity int) *Ring {
	return &Ring{capacity: capacity}
}

// Push appends a complete sample, dropping the oldest if the ring is full.
func (r *Ring) Push(sample string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, sample)
	if len(r.samples) > r.capacity {
		r.samples = r.samples[len(r.samples)-r.capacity:]
	}
}

// Latest returns the most recently pushed sample, or "" if the ring is empty.
func (r *Ring) Latest() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.samples) == 0 {
		return "", false
	}
	return r.samples[len(r.samples)-1], true
}

// Len reports the current sample count, for tests asserting overflow
// behavior.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// At returns the sample at logical index i (0 = oldest currently retained),
// for tests asserting FIFO-drop ordering.
func (r *Ring) At(i int) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.samples) {
		return "", false
	}
	return r.samples[i], true
}

// Clear empties the ring, used by DataCollector.Stop.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = nil
}

// ParseFunc turns one raw sample string into a typed value T, or returns an
// error if the sample is malformed.
type ParseFunc[T any] func(sample string) (T, error)

// Store is the generic MetricsStore: a Ring of raw samples plus a
// last-successfully-parsed cache, protected by its own mutex so readers and
// the writer thread never hold both locks across a parse (spec.md §4.4's
// concurrency rule).
type Store[T any] struct {
	ring   *Ring
	parse  ParseFunc[T]
	cacheM sync.Mutex
	cached *T
}

// NewStore constructs a Store with the given ring capacity and parser.
func NewStore[T any](capacity int, parse ParseFunc[T]) *Store[T] {
	return &Store[T]{ring: NewRing(capacity), parse: parse}
}

// Push adds a newly framed complete sample to the ring.
func (s *Store[T]) Push(sample string) {
	s.ring.Push(sample)
}

// Ring exposes the underlying ring, e.g. for overflow tests.
func (s *Store[T]) Ring() *Ring { return s.ring }

// Latest implements get_latest_data(): try to parse the newest sample; on
// success, cache and return it; on failure, fall back to the cached value;
// if neither is available, report ok=false.
func (s *Store[T]) Latest() (T, bool) {
	var zero T

	if raw, ok := s.ring.Latest(); ok {
		if v, err := s.parse(raw); err == nil {
			s.cacheM.Lock()
			cached := v
			s.cached = &cached
			s.cacheM.Unlock()
			return v, true
		}
	}

	s.cacheM.Lock()
	defer s.cacheM.Unlock()
	if s.cached != nil {
		return *s.cached, true
	}
	return zero, false
}

// Clear drops both the ring and the parsed-value cache.
func (s *Store[T]) Clear() {
	s.ring.Clear()
	s.cacheM.Lock()
	s.cached = nil
	s.cacheM.Unlock()
}
