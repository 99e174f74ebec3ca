package container

import (
	"os"
	"runtime"
	"strconv"
	"strings"
)

const (
	cgroupV2Max    = "/sys/fs/cgroup/cpu.max"
	cgroupV2CPUSet = "/sys/fs/cgroup/cpuset.cpus.effective"
	cgroupV2MemMax = "/sys/fs/cgroup/memory.max"
	cgroupV2MemCur = "/sys/fs/cgroup/memory.current"

	cgroupV1Quota  = "/sys/fs/cgroup/cpu/cpu.cfs_quota_us"
	cgroupV1Period = "/sys/fs/cgroup/cpu/cpu.cfs_period_us"
	cgroupV1CPUSet = "/sys/fs/cgroup/cpuset/cpuset.cpus"
	cgroupV1MemMax = "/sys/fs/cgroup/memory/memory.limit_in_bytes"
	cgroupV1MemCur = "/sys/fs/cgroup/memory/memory.usage_in_bytes"
)

func readCgroupCPU(info *Info) {
	// cgroup v2: "cpu.max" is "$MAX $PERIOD" or "max $PERIOD".
	if data, err := os.ReadFile(cgroupV2Max); err == nil {
		fields := strings.Fields(string(data))
		if len(fields) == 2 {
			if fields[0] != "max" {
				if q, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
					info.CPUQuota = &q
				}
			}
			if p, err := strconv.ParseInt(fields[1], 10, 64); err == nil {
				info.CPUPeriod = &p
			}
		}
		if set, ok := parseCpusetFile(cgroupV2CPUSet); ok {
			info.CpusetCPUs = set
		}
		return
	}

	// cgroup v1 fallback.
	if q, ok := readIntFile(cgroupV1Quota); ok && q > 0 {
		info.CPUQuota = &q
	}
	if p, ok := readIntFile(cgroupV1Period); ok {
		info.CPUPeriod = &p
	}
	if set, ok := parseCpusetFile(cgroupV1CPUSet); ok {
		info.CpusetCPUs = set
	}
}

func readCgroupMemory(info *Info) {
	hostTotal := hostTotalMemoryBytes()

	if limit, ok := readUintFile(cgroupV2MemMax); ok {
		if hostTotal == 0 || limit < hostTotal {
			info.MemoryLimitBytes = &limit
		}
		if usage, ok := readUintFile(cgroupV2MemCur); ok {
			info.MemoryUsageBytes = &usage
		}
		return
	}

	if limit, ok := readUintFile(cgroupV1MemMax); ok {
		if hostTotal == 0 || limit < hostTotal {
			info.MemoryLimitBytes = &limit
		}
		if usage, ok := readUintFile(cgroupV1MemCur); ok {
			info.MemoryUsageBytes = &usage
		}
	}
}

func readCgroupMemoryUsageOnly(info *Info) {
	if usage, ok := readUintFile(cgroupV2MemCur); ok {
		info.MemoryUsageBytes = &usage
		return
	}
	if usage, ok := readUintFile(cgroupV1MemCur); ok {
		info.MemoryUsageBytes = &usage
	}
}

func hostTotalMemoryBytes() uint64 {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "MemTotal:" {
			kb, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return 0
			}
			return kb * 1024
		}
	}
	return 0
}

func parseCpusetFile(path string) ([]int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return ParseCpusetRange(strings.TrimSpace(string(data)))
}

// ParseCpusetRange parses a cgroup cpuset string such as "0-2,5,7-8" into
// an ordered, deduplicated slice of logical CPU ids. Returns (nil, false)
// for an empty or malformed string.
func ParseCpusetRange(s string) ([]int, bool) {
	if s == "" {
		return nil, false
	}

	seen := make(map[int]bool)
	var ids []int

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			if len(bounds) != 2 {
				return nil, false
			}
			lo, err1 := strconv.Atoi(bounds[0])
			hi, err2 := strconv.Atoi(bounds[1])
			if err1 != nil || err2 != nil || hi < lo {
				return nil, false
			}
			for i := lo; i <= hi; i++ {
				if !seen[i] {
					seen[i] = true
					ids = append(ids, i)
				}
			}
		} else {
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, false
			}
			if !seen[v] {
				seen[v] = true
				ids = append(ids, v)
			}
		}
	}

	if len(ids) == 0 {
		return nil, false
	}
	return ids, true
}

// calculateEffectiveCPUs implements spec.md §4.5's
// min(quota/period, |cpuset|, host_cpu_count), defaulting to the host
// logical CPU count when no limit applies.
func calculateEffectiveCPUs(quota, period *int64, cpuset []int) float64 {
	effective := float64(runtime.NumCPU())

	if quota != nil && period != nil && *period > 0 {
		quotaCPUs := float64(*quota) / float64(*period)
		if quotaCPUs < effective {
			effective = quotaCPUs
		}
	}

	if len(cpuset) > 0 && float64(len(cpuset)) < effective {
		effective = float64(len(cpuset))
	}

	return effective
}
