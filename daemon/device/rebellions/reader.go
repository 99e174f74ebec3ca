// Package rebellions implements the Rebellions NPU adapter by shelling out
// to rbln-stat (or the older rbln-smi) with --json and decoding its
// response, per spec.md §4.2's "shell out to vendor CLI, parse JSON/CSV"
// rule. Grounded in original_source's src/device/readers/rebellions.rs.
package rebellions

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/all-smi-go/agent/daemon/command"
	"github.com/all-smi-go/agent/daemon/domain"
)

type pciInfo struct {
	BusID     string `json:"bus_id"`
	NumaNode  string `json:"numa_node"`
	LinkSpeed string `json:"link_speed"`
	LinkWidth string `json:"link_width"`
}

type memoryInfo struct {
	Used  string `json:"used"`
	Total string `json:"total"`
}

type device struct {
	Name        string     `json:"name"`
	SID         string     `json:"sid"`
	UUID        string     `json:"uuid"`
	DevicePath  string     `json:"device"`
	Status      string     `json:"status"`
	FWVersion   string     `json:"fw_ver"`
	PCI         pciInfo    `json:"pci"`
	Temperature string     `json:"temperature"`
	CardPower   string     `json:"card_power"`
	PState      string     `json:"pstate"`
	Memory      memoryInfo `json:"memory"`
	Util        string     `json:"util"`
	BoardInfo   string     `json:"board_info"`
}

type response struct {
	KMDVersion string   `json:"KMD_version"`
	Devices    []device `json:"devices"`
}

// Reader implements domain.DeviceReader for Rebellions NPUs.
type Reader struct {
	hostID, hostname, instance string
}

// NewReader constructs a Rebellions NPU reader.
func NewReader(hostID, hostname, instance string) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance}
}

func (r *Reader) ReaderName() string { return "rebellions" }

// SnapshotDevices never fails: a missing CLI, a non-zero exit, or malformed
// JSON all yield an empty slice.
func (r *Reader) SnapshotDevices(ctx context.Context) []domain.DeviceSnapshot {
	out, err := runRblnTool(ctx)
	if err != nil {
		return nil
	}

	var resp response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return nil
	}

	now := time.Now()
	snapshots := make([]domain.DeviceSnapshot, 0, len(resp.Devices))
	for _, d := range resp.Devices {
		usedMiB, totalMiB := parseMemoryMiB(d.Memory.Used), parseMemoryMiB(d.Memory.Total)
		snapshots = append(snapshots, domain.DeviceSnapshot{
			UUID:               d.UUID,
			Name:               d.Name,
			Type:               domain.DeviceTypeNPU,
			HostID:             r.hostID,
			Hostname:           r.hostname,
			Instance:           r.instance,
			Time:               now,
			UtilizationPercent: parsePercent(d.Util),
			UsedMemoryBytes:    usedMiB * 1024 * 1024,
			TotalMemoryBytes:   totalMiB * 1024 * 1024,
			TemperatureC:       parseCelsius(d.Temperature),
			PowerWatts:         parseWatts(d.CardPower),
			Detail: map[string]string{
				"serial_id":         d.SID,
				"device_path":       d.DevicePath,
				"status":            d.Status,
				"firmware_version":  d.FWVersion,
				"kmd_version":       resp.KMDVersion,
				"board_info":        d.BoardInfo,
				"pci_bus_id":        d.PCI.BusID,
				"pci_numa_node":     d.PCI.NumaNode,
				"pci_link_speed":    d.PCI.LinkSpeed,
				"pci_link_width":    d.PCI.LinkWidth,
				"performance_state": d.PState,
			},
		})
	}
	return snapshots
}

func runRblnTool(ctx context.Context) (string, error) {
	out, err := command.Output(ctx, "rebellions", command.Options{}, "rbln-stat", "--json")
	if err == nil {
		return out, nil
	}
	return command.Output(ctx, "rebellions", command.Options{}, "rbln-smi", "--json")
}

func parsePercent(s string) float64 {
	return parseNumericPrefix(s)
}

func parseCelsius(s string) float64 {
	return parseNumericPrefix(s)
}

func parseWatts(s string) float64 {
	return parseNumericPrefix(s)
}

// parseMemoryMiB parses a value like "1024MB" or "1.5GB" into MiB.
func parseMemoryMiB(s string) uint64 {
	n, unit := splitNumericSuffix(s)
	v, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return 0
	}
	switch unit {
	case "GB", "GiB":
		return uint64(v * 1024)
	default:
		return uint64(v)
	}
}

// parseNumericPrefix strips a trailing unit (°C, W, %) and parses the
// leading number, returning 0 on any parse failure.
func parseNumericPrefix(s string) float64 {
	n, _ := splitNumericSuffix(s)
	v, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return 0
	}
	return v
}

// splitNumericSuffix separates a leading numeric run from a trailing unit
// suffix, e.g. "45.0C" -> ("45.0", "C").
func splitNumericSuffix(s string) (number, unit string) {
	end := len(s)
	for end > 0 {
		c := s[end-1]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' {
			break
		}
		end--
	}
	return s[:end], s[end:]
}
