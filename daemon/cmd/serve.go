package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/cskr/pubsub"

	"github.com/all-smi-go/agent/daemon/api"
	"github.com/all-smi-go/agent/daemon/collector"
	"github.com/all-smi-go/agent/daemon/host/chassis"
	"github.com/all-smi-go/agent/daemon/logger"

	"github.com/all-smi-go/agent/daemon/exporter"
)

// Serve runs the local scrape agent: it assembles the platform's device and
// host readers, renders them on every GET /metrics, and blocks until an OS
// signal requests shutdown, per spec.md §5's cancellation rules.
type Serve struct {
	BindAddress string `help:"override the configured HTTP bind address"`
}

func (s *Serve) Run(ctx *Context) error {
	if s.BindAddress != "" {
		ctx.Config.Server.BindAddress = s.BindAddress
	}

	id := resolveIdentity(ctx.Config.Server.BindAddress)
	logger.Info("starting all-smi agent: host_id=%s hostname=%s instance=%s", id.hostID, id.hostname, id.instance)

	if len(ctx.Config.Collector.RestartBackoffTiers) > 0 {
		collector.RestartBackoff = ctx.Config.Collector.RestartBackoffTiers
	}
	if ctx.Config.Collector.UnhealthyAfter > 0 {
		collector.UnhealthyAfter = ctx.Config.Collector.UnhealthyAfter
	}
	go watchCollectorRestarts(ctx.Hub)

	gpuPower := &chassis.GPUPowerCache{}
	bundle := platformReaders(id, ctx.Hub, gpuPower)

	scraper := exporter.NewScraper(bundle.Devices, bundle.CPU, bundle.Memory, bundle.Storage, bundle.Chassis, gpuPower)

	server := api.NewServer(
		ctx.Config.Server.BindAddress,
		scraper,
		ctx.Config.Server.ReadTimeout,
		ctx.Config.Server.WriteTimeout,
	)

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Serve(sigCtx, ctx.Config.Server.ShutdownTimeout)
}

// watchCollectorRestarts folds every background collector's restart events
// into the agent's own process metrics, without collector needing to import
// daemon/api directly.
func watchCollectorRestarts(hub *pubsub.PubSub) {
	if hub == nil {
		return
	}
	ch := hub.Sub("collector.restart")
	for msg := range ch {
		name, _ := msg.(string)
		api.RecordCollectorRestart(name)
	}
}
