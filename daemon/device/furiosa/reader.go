// Package furiosa implements the FuriosaAI NPU adapter by shelling out to
// furiosa-smi with a JSON query, per spec.md §4.2's "shell out to vendor
// CLI, parse JSON/CSV" rule. furiosa-smi's JSON schema is not present in
// the retrieved corpus (only the exporter's metric names survive in
// original_source's mock template); the response shape below is inferred
// from those metric names (computation/copy engine utilization, NPU
// status) — see DESIGN.md.
package furiosa

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/all-smi-go/agent/daemon/command"
	"github.com/all-smi-go/agent/daemon/domain"
)

type device struct {
	Name                string  `json:"name"`
	UUID                string  `json:"uuid"`
	FirmwareVersion     string  `json:"firmware_version"`
	UtilizationPercent  float64 `json:"utilization"`
	ComputeUtilization  float64 `json:"computation_utilization"`
	CopyUtilization     float64 `json:"copy_utilization"`
	Running             bool    `json:"running"`
	TemperatureC        float64 `json:"temperature_celsius"`
	PowerWatts          float64 `json:"power_consumption_watts"`
	FrequencyMHz        uint32  `json:"frequency_mhz"`
	MemoryUsedBytes     uint64  `json:"memory_used_bytes"`
	MemoryTotalBytes    uint64  `json:"memory_total_bytes"`
}

type response struct {
	Devices []device `json:"devices"`
}

// Reader implements domain.DeviceReader for FuriosaAI NPUs.
type Reader struct {
	hostID, hostname, instance string
}

// NewReader constructs a FuriosaAI NPU reader.
func NewReader(hostID, hostname, instance string) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance}
}

func (r *Reader) ReaderName() string { return "furiosa" }

// SnapshotDevices never fails: a missing furiosa-smi, a non-zero exit, or
// malformed JSON all yield an empty slice.
func (r *Reader) SnapshotDevices(ctx context.Context) []domain.DeviceSnapshot {
	out, err := command.Output(ctx, "furiosa", command.Options{}, "furiosa-smi", "--json")
	if err != nil {
		return nil
	}

	var resp response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return nil
	}

	now := time.Now()
	snapshots := make([]domain.DeviceSnapshot, 0, len(resp.Devices))
	for i, d := range resp.Devices {
		status := "idle"
		if d.Running {
			status = "running"
		}
		ane := 0.0
		snapshots = append(snapshots, domain.DeviceSnapshot{
			UUID:               d.UUID,
			Name:               d.Name,
			Type:               domain.DeviceTypeNPU,
			HostID:             r.hostID,
			Hostname:           r.hostname,
			Instance:           r.instance,
			Time:               now,
			UtilizationPercent: d.UtilizationPercent,
			UsedMemoryBytes:    d.MemoryUsedBytes,
			TotalMemoryBytes:   d.MemoryTotalBytes,
			TemperatureC:       d.TemperatureC,
			PowerWatts:         d.PowerWatts,
			FrequencyMHz:       d.FrequencyMHz,
			// Furiosa has no Apple Neural Engine; ANE is always reported as 0,
			// matching original_source's mock template comment.
			ANEUtilizationMW: &ane,
			Detail: map[string]string{
				"firmware_version":        d.FirmwareVersion,
				"status":                  status,
				"computation_utilization": strconv.FormatFloat(d.ComputeUtilization, 'f', 2, 64),
				"copy_utilization":        strconv.FormatFloat(d.CopyUtilization, 'f', 2, 64),
				"index":                   strconv.Itoa(i),
			},
		})
	}
	return snapshots
}
