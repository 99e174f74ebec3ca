package collector

import (
	"context"

	"github.com/all-smi-go/agent/daemon/command"
	"github.com/cskr/pubsub"
)

// RingCapacity is the fixed ring size spec.md §3 specifies (~120 samples).
const RingCapacity = 120

// DataCollector binds a ProcessManager to a Store[T], the façade spec.md
// §4.4 names. Clearing the store on Stop (its destructor-equivalent must
// stop the child, which ProcessManager.Stop guarantees).
type DataCollector[T any] struct {
	pm    *ProcessManager
	store *Store[T]
}

// NewDataCollector wires a supervised child to a typed sample store.
func NewDataCollector[T any](source, name string, args []string, opts command.Options, frame FrameFunc, parse ParseFunc[T], hub *pubsub.PubSub) *DataCollector[T] {
	store := NewStore(RingCapacity, parse)
	pm := NewProcessManager(source, name, args, opts, frame, store.Ring(), hub)
	return &DataCollector[T]{pm: pm, store: store}
}

// Start launches the supervised child if not already running.
func (dc *DataCollector[T]) Start(ctx context.Context) { dc.pm.Start(ctx) }

// Stop halts the child and clears the store, per spec.md §4.4.
func (dc *DataCollector[T]) Stop() {
	dc.pm.Stop()
	dc.store.Clear()
}

// GetLatestData implements get_latest_data(): parse-or-fallback-to-cache,
// with ok=false when the store has never produced a usable sample.
func (dc *DataCollector[T]) GetLatestData() (T, bool) { return dc.store.Latest() }

// IsWarm reports whether a first sample has ever been received.
func (dc *DataCollector[T]) IsWarm() bool { return dc.pm.IsWarm() }

// IsHealthy reports whether a sample has arrived within UnhealthyAfter.
func (dc *DataCollector[T]) IsHealthy() bool { return dc.pm.IsHealthy() }
