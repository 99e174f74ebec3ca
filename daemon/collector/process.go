package collector

import (
	"bufio"
	"context"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/all-smi-go/agent/daemon/command"
	"github.com/all-smi-go/agent/daemon/logger"
	"github.com/cskr/pubsub"
)

// FrameFunc re-segments a child's raw stdout lines into complete sample
// strings. It is called once per line; when a line completes a sample, the
// function returns the framed sample and true. Vendor-specific: hl-smi's
// CSV format frames on blank lines, powermetrics frames on
// its "---" trailer (see daemon/device/gaudi and the powermetrics collector
// for their FrameFuncs).
type FrameFunc func(line string) (sample string, complete bool)

// Backoff tiers applied between restart attempts (spec.md Open Question 2:
// not fixed in the source, chosen conservatively). daemon/cmd overwrites
// this from the loaded config.CollectorConfig at startup.
var RestartBackoff = []time.Duration{1 * time.Second, 5 * time.Second, 15 * time.Second}

// UnhealthyAfter is how long a store may go without a fresh sample before
// IsHealthy reports false. daemon/cmd overwrites this from config.CollectorConfig.
var UnhealthyAfter = 30 * time.Second

// ProcessManager supervises one external-process child for the process's
// life: spawns it with a validated argv, reads its stdout on a dedicated
// goroutine (never the scrape path), reframes lines into complete samples,
// pushes them to a Ring, and restarts the child with backoff if it exits.
type ProcessManager struct {
	source  string // e.g. "hlsmi", "powermetrics" — for logs and validation
	name    string
	args    []string
	opts    command.Options
	frame   FrameFunc
	ring    *Ring
	hub     *pubsub.PubSub

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	firstSample   atomic.Bool
	lastSampleAt  atomic.Int64 // unix nanos
	attempt       atomic.Int32
}

// NewProcessManager constructs a supervisor for one vendor child. hub may be
// nil; when set, a "collector.<source>.first_sample" event is published on
// the first framed sample and a "collector.restart" event (carrying the
// command name) on every restart, for daemon/cmd to consume without
// importing collector.
func NewProcessManager(source, name string, args []string, opts command.Options, frame FrameFunc, ring *Ring, hub *pubsub.PubSub) *ProcessManager {
	return &ProcessManager{
		source: source,
		name:   name,
		args:   args,
		opts:   opts,
		frame:  frame,
		ring:   ring,
		hub:    hub,
	}
}

// Start launches the supervised child and its reader goroutine. Idempotent:
// calling Start twice while already running is a no-op.
func (pm *ProcessManager) Start(ctx context.Context) {
	if pm.ctx != nil && pm.ctx.Err() == nil {
		return
	}
	pm.ctx, pm.cancel = context.WithCancel(ctx)
	pm.wg.Add(1)
	go pm.superviseLoop()
}

// Stop signals the reader goroutine and supervised child to exit and waits
// up to a bounded deadline; a straggling goroutine is logged, not awaited
// forever (spec.md §5's shutdown policy).
func (pm *ProcessManager) Stop() {
	if pm.cancel == nil {
		return
	}
	pm.cancel()

	done := make(chan struct{})
	go func() {
		pm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.LogCollectorRestart(pm.name, int(pm.attempt.Load()), "stop deadline exceeded, leaking reader goroutine")
	}
}

// IsWarm reports whether at least one sample has ever been received.
func (pm *ProcessManager) IsWarm() bool { return pm.firstSample.Load() }

// IsHealthy reports whether a sample has arrived within UnhealthyAfter.
func (pm *ProcessManager) IsHealthy() bool {
	if !pm.firstSample.Load() {
		return false
	}
	last := time.Unix(0, pm.lastSampleAt.Load())
	return time.Since(last) < UnhealthyAfter
}

func (pm *ProcessManager) superviseLoop() {
	defer pm.wg.Done()

	attempt := 0
	for {
		if pm.ctx.Err() != nil {
			return
		}

		cmd, err := command.Start(pm.source, pm.opts, pm.name, pm.args...)
		if err != nil {
			logger.LogReaderError(pm.source, err)
			return
		}

		if !pm.runOnce(cmd) {
			return
		}

		attempt++
		pm.attempt.Store(int32(attempt))
		backoff := RestartBackoff[len(RestartBackoff)-1]
		if attempt-1 < len(RestartBackoff) {
			backoff = RestartBackoff[attempt-1]
		}
		logger.LogCollectorRestart(pm.name, attempt, "child exited, restarting after backoff")
		if pm.hub != nil {
			pm.hub.Pub(pm.name, "collector.restart")
		}

		select {
		case <-pm.ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

// runOnce starts the child, reads its stdout until it closes or the context
// is cancelled, and reports whether the supervisor loop should continue
// (true) or stop entirely (context cancelled, false).
func (pm *ProcessManager) runOnce(cmd *exec.Cmd) bool {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		logger.LogReaderError(pm.source, err)
		return true
	}
	if err := cmd.Start(); err != nil {
		logger.LogReaderError(pm.source, err)
		return true
	}

	exited := make(chan struct{})
	go func() {
		defer close(exited)
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if sample, complete := pm.frame(line); complete {
				pm.ring.Push(sample)
				pm.lastSampleAt.Store(time.Now().UnixNano())
				if !pm.firstSample.Swap(true) && pm.hub != nil {
					pm.hub.Pub(pm.source, "collector."+pm.source+".first_sample")
				}
			}
		}
	}()

	select {
	case <-pm.ctx.Done():
		_ = cmd.Process.Kill()
		<-exited
		_ = cmd.Wait()
		return false
	case <-exited:
		_ = cmd.Wait()
		return true
	}
}
