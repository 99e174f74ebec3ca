package nvidia

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/all-smi-go/agent/daemon/command"
	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/all-smi-go/agent/daemon/host/processjoin"
)

// Reader implements domain.DeviceReader for NVIDIA GPUs by invoking
// nvidia-smi once per scrape (cheap relative to hl-smi/powermetrics, so no
// background collector is needed here, per spec.md §4.4's scope note that
// only Apple and Habana need the long-running supervisor).
type Reader struct {
	hostID, hostname, instance string
}

// NewReader constructs an NVIDIA GPU reader.
func NewReader(hostID, hostname, instance string) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance}
}

func (r *Reader) ReaderName() string { return "nvidia" }

// SnapshotDevices never fails: an nvidia-smi invocation error (tool absent,
// no devices, permission denied) yields an empty slice.
func (r *Reader) SnapshotDevices(ctx context.Context) []domain.DeviceSnapshot {
	out, err := command.Output(ctx, "nvidia", command.Options{}, "nvidia-smi", "--query-gpu="+queryFields, "--format=csv,noheader,nounits")
	if err != nil {
		return nil
	}
	samples, err := ParseCSV(out)
	if err != nil {
		return nil
	}

	now := time.Now()
	snapshots := make([]domain.DeviceSnapshot, 0, len(samples))
	for _, s := range samples {
		snapshots = append(snapshots, domain.DeviceSnapshot{
			UUID:               s.UUID,
			Name:               s.Name,
			Type:               domain.DeviceTypeGPU,
			HostID:             r.hostID,
			Hostname:           r.hostname,
			Instance:           r.instance,
			Time:               now,
			UtilizationPercent: s.UtilizationPercent,
			UsedMemoryBytes:    s.MemoryUsedMiB * 1024 * 1024,
			TotalMemoryBytes:   s.MemoryTotalMiB * 1024 * 1024,
			TemperatureC:       s.TemperatureC,
			PowerWatts:         s.PowerDrawW,
			FrequencyMHz:       s.GraphicsClockMHz,
			Detail: map[string]string{
				"driver_version": s.DriverVersion,
				"power_limit_w":  strconv.FormatFloat(s.PowerLimitW, 'f', 1, 64),
				"index":          strconv.Itoa(s.Index),
			},
		})
	}
	return snapshots
}

// SnapshotProcesses lists GPU-resident compute processes via nvidia-smi's
// per-process query, then joins each PID against /proc for the host-side
// fields (user, RSS, command line), grounded in
// original_source/src/device/process_list.rs + process_utils.rs's
// same two-step join. Never fails: an unparseable or absent nvidia-smi
// yields an empty slice.
func (r *Reader) SnapshotProcesses(ctx context.Context) []domain.ProcessSnapshot {
	out, err := command.Output(ctx, "nvidia", command.Options{}, "nvidia-smi",
		"--query-compute-apps=pid,gpu_uuid,used_memory", "--format=csv,noheader,nounits")
	if err != nil {
		return nil
	}

	var snapshots []domain.ProcessSnapshot
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 3 {
			continue
		}
		pid, perr := strconv.Atoi(strings.TrimSpace(fields[0]))
		if perr != nil {
			continue
		}
		usedMiB, _ := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 64)

		snap := domain.ProcessSnapshot{
			PID:                pid,
			DeviceUUID:         strings.TrimSpace(fields[1]),
			UsesGPU:            true,
			UsedGPUMemoryBytes: usedMiB * 1024 * 1024,
		}
		if joined, ok := processjoin.Lookup(snap); ok {
			snap = joined
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots
}
