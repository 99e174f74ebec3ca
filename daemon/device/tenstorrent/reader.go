// Package tenstorrent implements the Tenstorrent NPU adapter by shelling
// out to tt-smi with a JSON query, per spec.md §4.2's "shell out to vendor
// CLI (tt-smi), parse JSON/CSV" rule. tt-smi's JSON schema is not present
// in the retrieved corpus (only the exporter's metric names survive in
// original_source's mock template); the response shape below is inferred
// from those metric names (SoC/ASIC/VREG/inlet readings, aiclk/axiclk/
// arcclk, voltage/current) — see DESIGN.md.
package tenstorrent

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/all-smi-go/agent/daemon/command"
	"github.com/all-smi-go/agent/daemon/domain"
)

type device struct {
	Name             string  `json:"name"`
	UUID             string  `json:"uuid"`
	BoardSerial      string  `json:"board_serial"`
	FirmwareVersion  string  `json:"firmware_version"`
	SoCUtilization   float64 `json:"soc_utilization"`
	ASICTempC        float64 `json:"asic_temperature"`
	VregTempC        float64 `json:"vreg_temperature"`
	InletTempC       float64 `json:"inlet_temperature"`
	AIClockMHz       uint32  `json:"aiclk_mhz"`
	AXIClockMHz      uint32  `json:"axiclk_mhz"`
	ARCClockMHz      uint32  `json:"arcclk_mhz"`
	VoltageVolts     float64 `json:"voltage_volts"`
	CurrentAmperes   float64 `json:"current_amperes"`
	MemoryUsedBytes  uint64  `json:"memory_used_bytes"`
	MemoryTotalBytes uint64  `json:"memory_total_bytes"`
}

type response struct {
	DriverVersion string   `json:"driver_version"`
	Devices       []device `json:"devices"`
}

// Reader implements domain.DeviceReader for Tenstorrent NPUs.
type Reader struct {
	hostID, hostname, instance string
}

// NewReader constructs a Tenstorrent NPU reader.
func NewReader(hostID, hostname, instance string) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance}
}

func (r *Reader) ReaderName() string { return "tenstorrent" }

// SnapshotDevices never fails: a missing tt-smi, a non-zero exit, or
// malformed JSON all yield an empty slice.
func (r *Reader) SnapshotDevices(ctx context.Context) []domain.DeviceSnapshot {
	out, err := command.Output(ctx, "tenstorrent", command.Options{}, "tt-smi", "--json")
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
		snapshots = append(snapshots, domain.DeviceSnapshot{
			UUID:               d.UUID,
			Name:               d.Name,
			Type:               domain.DeviceTypeNPU,
			HostID:             r.hostID,
			Hostname:           r.hostname,
			Instance:           r.instance,
			Time:               now,
			UtilizationPercent: d.SoCUtilization,
			UsedMemoryBytes:    d.MemoryUsedBytes,
			TotalMemoryBytes:   d.MemoryTotalBytes,
			TemperatureC:       d.ASICTempC,
			PowerWatts:         d.VoltageVolts * d.CurrentAmperes,
			FrequencyMHz:       d.AIClockMHz,
			Detail: map[string]string{
				"board_serial":     d.BoardSerial,
				"firmware_version": d.FirmwareVersion,
				"driver_version":   resp.DriverVersion,
				"vreg_temp_c":      strconv.FormatFloat(d.VregTempC, 'f', 1, 64),
				"inlet_temp_c":     strconv.FormatFloat(d.InletTempC, 'f', 1, 64),
				"axiclk_mhz":       strconv.FormatUint(uint64(d.AXIClockMHz), 10),
				"arcclk_mhz":       strconv.FormatUint(uint64(d.ARCClockMHz), 10),
				"voltage_volts":    strconv.FormatFloat(d.VoltageVolts, 'f', 3, 64),
				"current_amperes":  strconv.FormatFloat(d.CurrentAmperes, 'f', 1, 64),
				"index":            strconv.Itoa(i),
			},
		})
	}
	return snapshots
}
