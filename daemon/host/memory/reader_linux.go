//go:build linux

// Package memory implements domain.MemoryReader per spec.md §4.3. The Linux
// reader uses github.com/prometheus/procfs's Meminfo parser instead of
// hand-rolled /proc/meminfo scanning (SPEC_FULL.md domain-stack wiring).
package memory

import (
	"context"

	"github.com/all-smi-go/agent/daemon/container"
	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/prometheus/procfs"
)

// Reader implements domain.MemoryReader on Linux.
type Reader struct {
	hostID, hostname, instance string
	fs                         procfs.FS
}

// NewReader constructs a Linux memory reader over the default /proc mount.
func NewReader(hostID, hostname, instance string) *Reader {
	fs, _ := procfs.NewDefaultFS()
	return &Reader{hostID: hostID, hostname: hostname, instance: instance, fs: fs}
}

func (r *Reader) ReaderName() string { return "memory-linux" }

func kb(p *uint64) uint64 {
	if p == nil {
		return 0
	}
	return *p * 1024
}

// SnapshotMemory parses /proc/meminfo and, when containerized, substitutes
// the cgroup memory limit/usage for the host total/used per spec.md §4.3.
func (r *Reader) SnapshotMemory(ctx context.Context) (domain.MemorySnapshot, error) {
	info, err := r.fs.Meminfo()
	if err != nil {
		return domain.MemorySnapshot{}, domain.NewIO("memory-linux", "reading /proc/meminfo", err)
	}

	total := kb(info.MemTotal)
	free := kb(info.MemFree)
	available := kb(info.MemAvailable)
	if available == 0 {
		available = free
	}
	buffers := kb(info.Buffers)
	cached := kb(info.Cached)
	used := total - available
	if total > 0 && used > total {
		used = total
	}

	snap := domain.MemorySnapshot{
		HostID:         r.hostID,
		Hostname:       r.hostname,
		Instance:       r.instance,
		TotalBytes:     total,
		UsedBytes:      used,
		AvailableBytes: available,
		FreeBytes:      free,
		BuffersBytes:   buffers,
		CachedBytes:    cached,
		SwapTotalBytes: kb(info.SwapTotal),
		SwapFreeBytes:  kb(info.SwapFree),
	}
	if snap.SwapTotalBytes > snap.SwapFreeBytes {
		snap.SwapUsedBytes = snap.SwapTotalBytes - snap.SwapFreeBytes
	}

	if ci := container.Detect(); ci.IsContainer {
		container.RefreshUsage(&ci)
		if ci.MemoryLimitBytes != nil {
			snap.TotalBytes = *ci.MemoryLimitBytes
		}
		if ci.MemoryUsageBytes != nil {
			snap.UsedBytes = *ci.MemoryUsageBytes
			if snap.TotalBytes >= snap.UsedBytes {
				snap.AvailableBytes = snap.TotalBytes - snap.UsedBytes
			}
		}
	}

	if snap.TotalBytes > 0 {
		snap.UtilizationPercent = float64(snap.UsedBytes) / float64(snap.TotalBytes) * 100
	}

	return snap, nil
}
