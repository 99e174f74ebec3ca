package gaudi

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/all-smi-go/agent/daemon/collector"
	"github.com/all-smi-go/agent/daemon/command"
	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/cskr/pubsub"
)

const queryFields = "index,uuid,name,driver_version,memory.total,memory.used,memory.free,power.draw,power.max,temperature.aip,utilization.aip"

var singleton = collector.NewSingleton[MetricsData]("hlsmi")

// Reader implements domain.DeviceReader for Intel Gaudi NPUs by reading the
// process-wide hl-smi collector singleton.
type Reader struct {
	hostID, hostname, instance string
	hub                        *pubsub.PubSub
	interval                   time.Duration
}

// NewReader constructs a Gaudi reader. interval is the `-l <seconds>` value
// passed to hl-smi; hub may be nil.
func NewReader(hostID, hostname, instance string, interval time.Duration, hub *pubsub.PubSub) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance, interval: interval, hub: hub}
}

func (r *Reader) ReaderName() string { return "gaudi" }

func (r *Reader) dataCollector() *collector.DataCollector[MetricsData] {
	return singleton.Get(func() *collector.DataCollector[MetricsData] {
		seconds := int(r.interval.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		args := []string{"-Q", queryFields, "--format", "csv,noheader", "-l", strconv.Itoa(seconds)}
		return collector.NewDataCollector[MetricsData]("hlsmi", "hl-smi", args, command.Options{Timeout: 0}, NewFrame(), ParseHLSMIOutput, r.hub)
	})
}

// SnapshotDevices returns the newest parsed hl-smi sample, mapped into the
// device-neutral model. Never fails: an absent or unparsed collector yields
// an empty slice, per domain.DeviceReader's contract.
func (r *Reader) SnapshotDevices(ctx context.Context) []domain.DeviceSnapshot {
	dc := r.dataCollector()
	if dc == nil {
		return nil
	}
	dc.Start(ctx)

	data, ok := dc.GetLatestData()
	if !ok {
		return nil
	}

	now := time.Now()
	snapshots := make([]domain.DeviceSnapshot, 0, len(data.Devices))
	for _, d := range data.Devices {
		snapshots = append(snapshots, domain.DeviceSnapshot{
			UUID:               d.UUID,
			Name:               MapDeviceName(d.Name),
			Type:               domain.DeviceTypeNPU,
			HostID:             r.hostID,
			Hostname:           r.hostname,
			Instance:           r.instance,
			Time:               now,
			UtilizationPercent: d.Utilization,
			UsedMemoryBytes:    d.MemoryUsedMiB * 1024 * 1024,
			TotalMemoryBytes:   d.MemoryTotalMiB * 1024 * 1024,
			TemperatureC:       float64(d.TemperatureC),
			PowerWatts:         d.PowerDrawW,
			Detail: map[string]string{
				"driver_version": d.DriverVersion,
				"power_max_w":    fmt.Sprintf("%.1f", d.PowerMaxW),
				"index":          strconv.FormatUint(uint64(d.Index), 10),
			},
		})
	}
	return snapshots
}

// Shutdown stops the shared hl-smi child, if running. Intended for process
// shutdown / test teardown.
func Shutdown() { singleton.Shutdown() }
