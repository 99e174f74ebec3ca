//go:build linux

// Package cpu implements domain.CPUReader for Linux, macOS and Windows per
// spec.md §4.3. The Linux reader uses github.com/prometheus/procfs rather
// than hand-rolled /proc scanning (SPEC_FULL.md's domain-stack wiring),
// mirroring how a procfs-based exporter in the pack would read CPU stats.
// Grounded in daemon/plugins/system/system.go's delta-utilization approach
// and original_source/src/gpu/cpu_linux.rs.
package cpu

import (
	"context"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/all-smi-go/agent/daemon/container"
	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/prometheus/procfs"
)

// Reader implements domain.CPUReader on Linux.
type Reader struct {
	hostID, hostname, instance string
	fs                         procfs.FS

	mu       sync.Mutex
	lastTotal procfs.CPUStat
	lastPer   map[int64]procfs.CPUStat
	haveLast  bool
}

// NewReader constructs a Linux CPU reader over the default /proc mount.
func NewReader(hostID, hostname, instance string) *Reader {
	fs, _ := procfs.NewDefaultFS()
	return &Reader{hostID: hostID, hostname: hostname, instance: instance, fs: fs, lastPer: map[int64]procfs.CPUStat{}}
}

func (r *Reader) ReaderName() string { return "cpu-linux" }

func cpuStatTotal(s procfs.CPUStat) float64 {
	return s.User + s.Nice + s.System + s.Idle + s.Iowait + s.IRQ + s.SoftIRQ + s.Steal + s.Guest + s.GuestNice
}

func cpuStatActive(s procfs.CPUStat) float64 {
	return cpuStatTotal(s) - s.Idle - s.Iowait
}

// SnapshotCPU reads /proc/stat and /proc/cpuinfo via procfs, applying
// container CPU truncation when running inside a cgroup-limited container.
func (r *Reader) SnapshotCPU(ctx context.Context) (domain.CPUSnapshot, error) {
	stat, err := r.fs.Stat()
	if err != nil {
		return domain.CPUSnapshot{}, domain.NewIO("cpu-linux", "reading /proc/stat", err)
	}
	cpuInfos, err := r.fs.CPUInfo()
	if err != nil {
		return domain.CPUSnapshot{}, domain.NewIO("cpu-linux", "reading /proc/cpuinfo", err)
	}
	if len(cpuInfos) == 0 {
		return domain.CPUSnapshot{}, domain.NewDeviceAccess("cpu-linux", "no processors reported in /proc/cpuinfo", nil)
	}

	static := summarizeCPUInfo(cpuInfos)

	r.mu.Lock()
	utilization := r.deltaUtilization(stat.CPUTotal)
	perCoreUtil := make([]domain.CoreUtilization, 0, len(stat.CPU))
	ids := make([]int64, 0, len(stat.CPU))
	for id := range stat.CPU {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		u := r.deltaCoreUtilization(id, stat.CPU[id])
		perCoreUtil = append(perCoreUtil, domain.CoreUtilization{
			CoreID:             int(id),
			Type:               domain.CoreTypeStandard,
			UtilizationPercent: u,
		})
	}
	r.mu.Unlock()

	snap := domain.CPUSnapshot{
		HostID:             r.hostID,
		Hostname:           r.hostname,
		Instance:           r.instance,
		Model:              static.model,
		Architecture:       unameMachine(),
		Platform:           static.platform,
		SocketCount:        static.socketCount,
		TotalCores:         static.totalCores,
		TotalThreads:       static.totalThreads,
		BaseFrequencyMHz:   static.baseFreqMHz,
		MaxFrequencyMHz:    maxFreqMHz(static.baseFreqMHz),
		CacheSizeMB:        static.cacheSizeMB,
		UtilizationPercent: utilization,
		TemperatureC:       readCPUTemperature(),
		PerCore:            perCoreUtil,
	}

	coresPerSocket := snap.TotalCores
	threadsPerSocket := snap.TotalThreads
	if snap.SocketCount > 0 {
		coresPerSocket = snap.TotalCores / snap.SocketCount
		threadsPerSocket = snap.TotalThreads / snap.SocketCount
	}
	for s := 0; s < snap.SocketCount; s++ {
		snap.PerSocket = append(snap.PerSocket, domain.CPUSocketInfo{
			SocketID:     s,
			Utilization:  utilization,
			Cores:        coresPerSocket,
			Threads:      threadsPerSocket,
			FrequencyMHz: snap.BaseFrequencyMHz,
		})
	}

	if info := container.Detect(); info.IsContainer {
		applyContainerTruncation(&snap, info)
	}

	return snap, nil
}

// applyContainerTruncation reduces reported core/thread counts to the
// container's effective CPU allotment, per spec.md §4.3: prefer cpuset
// identity when present, else the first floor(effective) logical CPUs.
func applyContainerTruncation(snap *domain.CPUSnapshot, info domain.ContainerInfo) {
	effective := int(info.EffectiveCPUCount)
	if effective <= 0 || effective >= snap.TotalCores {
		return
	}

	var keep map[int]bool
	if len(info.CpusetCPUs) > 0 {
		keep = make(map[int]bool, len(info.CpusetCPUs))
		for _, id := range info.CpusetCPUs {
			keep[id] = true
		}
	} else {
		keep = make(map[int]bool, effective)
		for i := 0; i < effective && i < len(snap.PerCore); i++ {
			keep[snap.PerCore[i].CoreID] = true
		}
	}

	filtered := snap.PerCore[:0:0]
	for _, c := range snap.PerCore {
		if keep[c.CoreID] {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) > 0 {
		snap.PerCore = filtered
	}

	ratio := float64(effective) / float64(snap.TotalCores)
	snap.TotalCores = effective
	snap.TotalThreads = int(float64(snap.TotalThreads) * ratio)
	if snap.TotalThreads < effective {
		snap.TotalThreads = effective
	}
}

func (r *Reader) deltaUtilization(cur procfs.CPUStat) float64 {
	if !r.haveLast {
		r.lastTotal = cur
		r.haveLast = true
		return 0
	}
	totalDiff := cpuStatTotal(cur) - cpuStatTotal(r.lastTotal)
	activeDiff := cpuStatActive(cur) - cpuStatActive(r.lastTotal)
	r.lastTotal = cur
	if totalDiff <= 0 {
		return 0
	}
	return activeDiff / totalDiff * 100
}

func (r *Reader) deltaCoreUtilization(id int64, cur procfs.CPUStat) float64 {
	prev, ok := r.lastPer[id]
	r.lastPer[id] = cur
	if !ok {
		return 0
	}
	totalDiff := cpuStatTotal(cur) - cpuStatTotal(prev)
	activeDiff := cpuStatActive(cur) - cpuStatActive(prev)
	if totalDiff <= 0 {
		return 0
	}
	return activeDiff / totalDiff * 100
}

type staticCPUInfo struct {
	model        string
	platform     domain.CorePlatform
	socketCount  int
	totalCores   int
	totalThreads int
	baseFreqMHz  uint32
	cacheSizeMB  uint32
}

func summarizeCPUInfo(infos []procfs.CPUInfo) staticCPUInfo {
	var s staticCPUInfo
	s.platform = domain.PlatformOther
	physicalIDs := map[string]struct{}{}

	for _, ci := range infos {
		if s.model == "" {
			s.model = ci.ModelName
			lower := strings.ToLower(ci.ModelName)
			switch {
			case strings.Contains(lower, "intel"):
				s.platform = domain.PlatformIntel
			case strings.Contains(lower, "amd"):
				s.platform = domain.PlatformAMD
			case strings.Contains(lower, "arm"), strings.Contains(lower, "aarch64"):
				s.platform = domain.PlatformArm
			}
		}
		if ci.PhysicalID != "" {
			physicalIDs[ci.PhysicalID] = struct{}{}
		}
		if s.baseFreqMHz == 0 && ci.CPUMHz != 0 {
			s.baseFreqMHz = uint32(ci.CPUMHz)
		}
		if s.cacheSizeMB == 0 && ci.CacheSize != "" {
			if kb, err := strconv.ParseUint(strings.Fields(ci.CacheSize)[0], 10, 32); err == nil {
				s.cacheSizeMB = uint32(kb / 1024)
			}
		}
	}

	if len(physicalIDs) == 0 {
		s.socketCount = 1
	} else {
		s.socketCount = len(physicalIDs)
	}
	s.totalThreads = len(infos)
	s.totalCores = len(infos)
	return s
}

func maxFreqMHz(base uint32) uint32 {
	content, err := os.ReadFile("/sys/devices/system/cpu/cpu0/cpufreq/cpuinfo_max_freq")
	if err == nil {
		if khz, err := strconv.ParseUint(strings.TrimSpace(string(content)), 10, 32); err == nil {
			return uint32(khz / 1000)
		}
	}
	return base
}

func unameMachine() string {
	out, err := exec.Command("uname", "-m").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

var thermalZonePaths = []string{
	"/sys/class/thermal/thermal_zone0/temp",
	"/sys/class/thermal/thermal_zone1/temp",
	"/sys/class/hwmon/hwmon0/temp1_input",
	"/sys/class/hwmon/hwmon1/temp1_input",
}

func readCPUTemperature() *float64 {
	for _, path := range thermalZonePaths {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		milli, err := strconv.ParseFloat(strings.TrimSpace(string(content)), 64)
		if err != nil {
			continue
		}
		c := milli / 1000
		return &c
	}
	return nil
}
