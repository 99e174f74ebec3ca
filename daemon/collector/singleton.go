package collector

import (
	"context"
	"sync"

	"github.com/all-smi-go/agent/daemon/logger"
)

// Singleton lazily constructs and holds one process-wide DataCollector[T],
// mirroring spec.md §5's "mutex with poison recovery" singleton policy: Go
// mutexes don't poison on panic, so Get recovers from a panicking
// constructor and simply retries construction on the next call instead of
// leaving the slot permanently broken.
type Singleton[T any] struct {
	mu      sync.Mutex
	dc      *DataCollector[T]
	ctx     context.Context
	cancel  context.CancelFunc
	name    string
}

// NewSingleton names the singleton for logging (e.g. "hlsmi", "powermetrics").
func NewSingleton[T any](name string) *Singleton[T] {
	return &Singleton[T]{name: name}
}

// Get returns the process-wide collector, constructing and starting it on
// first use via build. Idempotent: concurrent callers block on the mutex
// and share the same instance.
func (s *Singleton[T]) Get(build func() *DataCollector[T]) (dc *DataCollector[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dc != nil {
		return s.dc
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Logger.Error().Str("component", "collector").Str("name", s.name).
				Interface("panic", r).Msg("singleton init panicked, slot left empty for retry")
			dc = nil
		}
	}()

	s.ctx, s.cancel = context.WithCancel(context.Background())
	dc = build()
	dc.Start(s.ctx)
	s.dc = dc
	return dc
}

// Shutdown stops the collector and nulls the slot so a later Get rebuilds a
// fresh instance (spec.md §8: "re-initializing a singleton after shutdown
// yields a fresh ring"). It never kills unrelated processes of the same
// name — only the child this ProcessManager itself spawned.
func (s *Singleton[T]) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dc == nil {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.dc.Stop()
	s.dc = nil
}
