//go:build windows

package cpu

import (
	"context"

	"github.com/all-smi-go/agent/daemon/domain"
	"golang.org/x/sys/windows"
)

// Reader implements domain.CPUReader on Windows using GetSystemInfo for
// the logical processor count. No utilization, frequency or temperature
// source is queried: utilization is always zero and TemperatureC is nil —
// see DESIGN.md.
type Reader struct {
	hostID, hostname, instance string
}

// NewReader constructs a Windows CPU reader.
func NewReader(hostID, hostname, instance string) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance}
}

func (r *Reader) ReaderName() string { return "cpu-windows" }

func (r *Reader) SnapshotCPU(ctx context.Context) (domain.CPUSnapshot, error) {
	var sysInfo windows.SystemInfo
	windows.GetSystemInfo(&sysInfo)

	snap := domain.CPUSnapshot{
		HostID:       r.hostID,
		Hostname:     r.hostname,
		Instance:     r.instance,
		Platform:     domain.PlatformOther,
		SocketCount:  1,
		TotalCores:   int(sysInfo.NumberOfProcessors),
		TotalThreads: int(sysInfo.NumberOfProcessors),
	}
	snap.TemperatureC = readWindowsTemperature()

	return snap, nil
}

// readWindowsTemperature queries no sensor and always returns nil; an
// absent temperature is not an error, per every platform's "partial data
// is not an error" rule (spec.md §4.1).
func readWindowsTemperature() *float64 {
	return nil
}
