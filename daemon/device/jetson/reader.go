//go:build linux

package jetson

import (
	"context"
	"strings"
	"time"

	"github.com/all-smi-go/agent/daemon/command"
	"github.com/all-smi-go/agent/daemon/domain"
)

// Reader implements domain.DeviceReader for NVIDIA Jetson SoCs. Unlike the
// discrete-GPU nvidia reader, Jetson has no NVML/nvidia-smi device query;
// readings come from sysfs and device-tree, with nvidia-smi consulted only
// for its CUDA/driver version banner when present.
type Reader struct {
	hostID, hostname, instance string
}

// NewReader constructs a Jetson reader.
func NewReader(hostID, hostname, instance string) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance}
}

func (r *Reader) ReaderName() string { return "jetson" }

func (r *Reader) SnapshotDevices(ctx context.Context) []domain.DeviceSnapshot {
	s := Read()

	detail := map[string]string{}
	if s.Architecture != "" {
		detail["architecture"] = s.Architecture
	}
	if s.ComputeCapability != "" {
		detail["compute_capability"] = s.ComputeCapability
	}
	cudaVersion, driverVersion := readNvidiaSMIBanner(ctx)
	if cudaVersion != "" {
		detail["cuda_version"] = cudaVersion
	}
	if driverVersion != "" {
		detail["driver_version"] = driverVersion
	}

	return []domain.DeviceSnapshot{{
		UUID:                  "NVIDIA-Jetson",
		Name:                  s.Name,
		Type:                  domain.DeviceTypeGPU,
		HostID:                r.hostID,
		Hostname:              r.hostname,
		Instance:              r.instance,
		Time:                  time.Now(),
		UtilizationPercent:    s.UtilizationPercent,
		UsedMemoryBytes:       s.UsedMemoryBytes,
		TotalMemoryBytes:      s.TotalMemoryBytes,
		TemperatureC:          s.TemperatureC,
		PowerWatts:            s.PowerWatts,
		FrequencyMHz:          s.FrequencyMHz,
		DLAUtilizationPercent: s.DLAUtilization,
		Detail:                detail,
	}}
}

// readNvidiaSMIBanner best-effort parses nvidia-smi's header banner for its
// CUDA Version/Driver Version lines. Jetson boards that lack nvidia-smi (or
// run a headless L4T image without it) yield empty strings, not an error.
func readNvidiaSMIBanner(ctx context.Context) (cudaVersion, driverVersion string) {
	out, err := command.Output(ctx, "jetson", command.Options{}, "nvidia-smi")
	if err != nil {
		return "", ""
	}
	for _, line := range strings.Split(out, "\n") {
		if idx := strings.Index(line, "CUDA Version:"); idx >= 0 {
			cudaVersion = strings.TrimSpace(line[idx+len("CUDA Version:"):])
			cudaVersion = strings.TrimRight(cudaVersion, " |")
		}
		if idx := strings.Index(line, "Driver Version:"); idx >= 0 {
			rest := strings.TrimSpace(line[idx+len("Driver Version:"):])
			if sp := strings.IndexAny(rest, " \t|"); sp >= 0 {
				rest = rest[:sp]
			}
			driverVersion = rest
		}
	}
	return cudaVersion, driverVersion
}
