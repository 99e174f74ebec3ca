package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/all-smi-go/agent/daemon/aggregator"
	"github.com/all-smi-go/agent/daemon/api"
	"github.com/all-smi-go/agent/daemon/config"
)

// View runs one fleet aggregator fetch loop against the configured peers and
// prints a table summarizing each device, per SPEC_FULL.md's A.4 "view"
// command description. This is the thin CLI presentation layer spec.md's
// Non-goals exclude from core scope; all fetch/parse/retry logic lives in
// daemon/aggregator, which this command only calls into.
type View struct {
	Peers []string `help:"override the configured peer list (host:port,...)"`
}

func (v *View) Run(ctx *Context) error {
	agCfg := toAggregatorConfig(ctx.Config.Aggregator)
	if len(v.Peers) > 0 {
		agCfg.Peers = v.Peers
	}

	client, err := aggregator.NewClient(agCfg)
	if err != nil {
		return err
	}

	report := client.FetchAll(context.Background())
	api.RecordPeerScrapeStats(report.Stats.Successes, report.Stats.Failures)
	printReport(report)
	return nil
}

// toAggregatorConfig converts the persisted config.AggregatorConfig into
// daemon/aggregator.Config. The two are deliberately distinct types: config
// must not import aggregator, since config is also loaded by Serve, which
// has no need for an aggregator client.
func toAggregatorConfig(c config.AggregatorConfig) aggregator.Config {
	return aggregator.Config{
		Peers:                  c.Peers,
		RequestTimeout:         c.RequestTimeout,
		ConcurrencyCap:         c.ConcurrencyCap,
		StaggerInterval:        c.StaggerInterval,
		RetryAttempts:          c.RetryAttempts,
		RetryBaseDelay:         c.RetryBaseDelay,
		DialTimeout:            c.DialTimeout,
		TCPKeepAlive:           c.TCPKeepAlive,
		IdleConnTimeout:        c.IdleConnTimeout,
		MaxIdleConnsPerHost:    c.MaxIdleConnsPerHost,
		HTTP2KeepAliveInterval: c.HTTP2KeepAliveInterval,
	}
}

func printReport(r aggregator.Report) {
	fmt.Printf("peers: %d ok, %d failed\n", r.Stats.Successes, r.Stats.Failures)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Class", "Host", "Name", "Util%", "Mem", "Power(W)", "Temp(C)"})

	for _, d := range r.GPUs {
		table.Append([]string{
			strings.ToUpper(string(d.Type)),
			d.Hostname,
			d.Name,
			fmt.Sprintf("%.1f", d.UtilizationPercent),
			fmt.Sprintf("%d/%d", d.UsedMemoryBytes, d.TotalMemoryBytes),
			fmt.Sprintf("%.1f", d.PowerWatts),
			fmt.Sprintf("%.1f", d.TemperatureC),
		})
	}
	for _, c := range r.CPUs {
		temp := 0.0
		if c.TemperatureC != nil {
			temp = *c.TemperatureC
		}
		power := 0.0
		if c.PowerWatts != nil {
			power = *c.PowerWatts
		}
		table.Append([]string{"CPU", c.Hostname, c.Instance, fmt.Sprintf("%.1f", c.UtilizationPercent), "-", fmt.Sprintf("%.1f", power), fmt.Sprintf("%.1f", temp)})
	}
	for _, m := range r.Memory {
		table.Append([]string{"MEM", m.Hostname, m.Instance, fmt.Sprintf("%.1f", m.UtilizationPercent), fmt.Sprintf("%d/%d", m.UsedBytes, m.TotalBytes), "-", "-"})
	}
	for _, s := range r.Storage {
		table.Append([]string{"DISK", s.Hostname, s.MountPoint, "-", fmt.Sprintf("%d/%d", s.TotalBytes-s.AvailableBytes, s.TotalBytes), "-", "-"})
	}

	table.Render()
}
