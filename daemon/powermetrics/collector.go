package powermetrics

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/all-smi-go/agent/daemon/collector"
	"github.com/all-smi-go/agent/daemon/command"
	"github.com/cskr/pubsub"
)

var singleton = collector.NewSingleton[Sample]("powermetrics")

// NewFrame accumulates powermetrics lines until its "---" sample trailer,
// which separates consecutive reporting intervals in `-i <ms>` mode.
func NewFrame() func(line string) (string, bool) {
	var buf []string
	return func(line string) (string, bool) {
		if strings.TrimSpace(line) == "---" || strings.HasPrefix(line, "*** Sampled") {
			if len(buf) == 0 {
				return "", false
			}
			sample := strings.Join(buf, "\n")
			buf = nil
			return sample, true
		}
		buf = append(buf, line)
		return "", false
	}
}

// Get returns the process-wide powermetrics collector, starting the shared
// child on first use. intervalMS is only honored on first construction —
// callers sharing the singleton inherit whichever interval started it.
func Get(ctx context.Context, intervalMS int, hub *pubsub.PubSub) *collector.DataCollector[Sample] {
	dc := singleton.Get(func() *collector.DataCollector[Sample] {
		args := []string{
			"--samplers", "cpu_power,gpu_power,ane_power,thermal,tasks",
			"--show-process-gpu",
			"-i", strconv.Itoa(intervalMS),
		}
		opts := command.Options{Nice: true}
		return collector.NewDataCollector[Sample]("powermetrics", "powermetrics", args, opts, NewFrame(), Parse, hub)
	})
	if dc != nil {
		dc.Start(ctx)
	}
	return dc
}

// Shutdown stops the shared powermetrics child, if running.
func Shutdown() { singleton.Shutdown() }

// DefaultInterval is the sampling period every Apple Silicon reader passes
// to Get; daemon/config has no setting for it.
const DefaultInterval = 1 * time.Second
