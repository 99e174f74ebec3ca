//go:build windows

// Package amdwmi implements the AMD GPU adapter on Windows via WMI's
// Win32_VideoController class, grounded in daemon/wmi's raw-COM query
// chokepoint. AMD exposes no public utilization/temperature/power counters
// through WMI the way NVIDIA does through NVML, so this reader reports only
// what Win32_VideoController carries: name, VRAM, and driver version.
package amdwmi

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/all-smi-go/agent/daemon/logger"
	"github.com/all-smi-go/agent/daemon/wmi"
)

const videoControllerQuery = "SELECT Name, AdapterRAM, DriverVersion, PNPDeviceID FROM Win32_VideoController"

// suspiciousAdapterRAM is AdapterRAM's max representable value under WMI's
// 32-bit unsigned type (4 GiB - 1). Cards with more VRAM than that report
// this exact sentinel instead of their true size.
const suspiciousAdapterRAM = 4294967295

var warnOnce sync.Once

// Reader implements domain.DeviceReader for AMD GPUs on Windows.
type Reader struct {
	hostID, hostname, instance string
}

// NewReader constructs an AMD WMI reader.
func NewReader(hostID, hostname, instance string) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance}
}

func (r *Reader) ReaderName() string { return "amd-wmi" }

// SnapshotDevices never fails: a WMI query error or zero matching rows
// yields an empty slice.
func (r *Reader) SnapshotDevices(ctx context.Context) []domain.DeviceSnapshot {
	rows, err := wmi.Query(`root\cimv2`, videoControllerQuery)
	if err != nil {
		logger.LogReaderError("amd-wmi", err)
		return nil
	}

	now := time.Now()
	var snapshots []domain.DeviceSnapshot
	for i, row := range rows {
		name := stringField(row, "Name")
		if !isAMD(name) {
			continue
		}

		adapterRAM := uint64Field(row, "AdapterRAM")
		if adapterRAM == suspiciousAdapterRAM {
			warnOnce.Do(func() {
				logger.Warn("AMD GPU %q reports AdapterRAM at the WMI 32-bit ceiling (%d bytes); actual VRAM may be larger and is unavailable without the AMD ADL SDK", name, suspiciousAdapterRAM)
			})
		}

		uuid := stringField(row, "PNPDeviceID")
		if uuid == "" {
			uuid = name
		}

		snapshots = append(snapshots, domain.DeviceSnapshot{
			UUID:             uuid,
			Name:             name,
			Type:             domain.DeviceTypeGPU,
			HostID:           r.hostID,
			Hostname:         r.hostname,
			Instance:         r.instance,
			Time:             now,
			TotalMemoryBytes: adapterRAM,
			Detail: map[string]string{
				"driver_version":  stringField(row, "DriverVersion"),
				"index":           strconv.Itoa(i),
				"vram_unreliable": boolString(adapterRAM == suspiciousAdapterRAM),
			},
		})
	}
	return snapshots
}

// isAMD matches the vendor substrings spec.md's AMD-WMI adapter filters on.
func isAMD(name string) bool {
	upper := strings.ToUpper(name)
	return strings.Contains(upper, "AMD") || strings.Contains(upper, "RADEON") || strings.Contains(upper, "ATI")
}

func stringField(row wmi.Row, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func uint64Field(row wmi.Row, key string) uint64 {
	v, ok := row[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case uint64:
		return n
	case uint32:
		return uint64(n)
	case int64:
		return uint64(n)
	case int32:
		return uint64(n)
	default:
		return 0
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

