//go:build darwin

package memory

import (
	"bufio"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/all-smi-go/agent/daemon/domain"
)

// Reader implements domain.MemoryReader on macOS via `vm_stat` and `sysctl`,
// per spec.md §4.3 "Memory-macOS".
type Reader struct {
	hostID, hostname, instance string
	pageSize                   uint64
}

// NewReader constructs a macOS memory reader.
func NewReader(hostID, hostname, instance string) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance, pageSize: 4096}
}

func (r *Reader) ReaderName() string { return "memory-darwin" }

// SnapshotMemory computes used = total - free - inactive - speculative and
// available = free + inactive + speculative, per spec.md §4.3.
func (r *Reader) SnapshotMemory(ctx context.Context) (domain.MemorySnapshot, error) {
	total, err := sysctlUint64("hw.memsize")
	if err != nil {
		return domain.MemorySnapshot{}, domain.NewIO("memory-darwin", "sysctl hw.memsize", err)
	}

	pages, err := vmStatPages()
	if err != nil {
		return domain.MemorySnapshot{}, domain.NewDeviceAccess("memory-darwin", "running vm_stat", err)
	}

	pageSize := r.pageSize
	free := pages["free"] * pageSize
	inactive := pages["inactive"] * pageSize
	speculative := pages["speculative"] * pageSize
	wired := pages["wired down"] * pageSize
	active := pages["active"] * pageSize

	available := free + inactive + speculative
	used := total - available
	if used > total {
		used = active + wired
	}

	snap := domain.MemorySnapshot{
		HostID:         r.hostID,
		Hostname:       r.hostname,
		Instance:       r.instance,
		TotalBytes:     total,
		UsedBytes:      used,
		AvailableBytes: available,
		FreeBytes:      free,
	}

	if swapTotal, swapUsed, err := swapUsage(); err == nil {
		snap.SwapTotalBytes = swapTotal
		snap.SwapUsedBytes = swapUsed
		if swapTotal > swapUsed {
			snap.SwapFreeBytes = swapTotal - swapUsed
		}
	}

	if snap.TotalBytes > 0 {
		snap.UtilizationPercent = float64(snap.UsedBytes) / float64(snap.TotalBytes) * 100
	}

	return snap, nil
}

func sysctlUint64(name string) (uint64, error) {
	out, err := exec.Command("sysctl", "-n", name).Output()
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(string(out)), 10, 64)
}

// vmStatPages parses `vm_stat` output into a map of page-state name to page
// count, e.g. {"free": 12345, "active": 6789, ...}.
func vmStatPages() (map[string]uint64, error) {
	out, err := exec.Command("vm_stat").Output()
	if err != nil {
		return nil, err
	}

	pages := map[string]uint64{}
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		key = strings.TrimPrefix(key, "pages ")
		value := strings.TrimSuffix(strings.TrimSpace(line[idx+1:]), ".")
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			continue
		}
		pages[key] = n
	}
	return pages, nil
}

// swapUsage parses `sysctl vm.swapusage`'s "total = 2048.00M  used = 512.00M
// free = 1536.00M" line into bytes.
func swapUsage() (total, used uint64, err error) {
	out, err := exec.Command("sysctl", "-n", "vm.swapusage").Output()
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(string(out))
	for i, f := range fields {
		switch f {
		case "total":
			if i+2 < len(fields) {
				total = parseMegabytes(fields[i+2])
			}
		case "used":
			if i+2 < len(fields) {
				used = parseMegabytes(fields[i+2])
			}
		}
	}
	return total, used, nil
}

func parseMegabytes(s string) uint64 {
	s = strings.TrimSuffix(s, "M")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return uint64(f * 1024 * 1024)
}
