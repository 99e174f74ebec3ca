// Package container detects cgroup v1/v2 resource limits and derives the
// effective CPU count host readers re-project their data against. Grounded
// in original_source/src/device/container_info and the teacher's
// /proc-scanning style (daemon/plugins/system/system.go).
package container

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Detect probes the three container signals spec.md §4.5 names (ORed, not
// individually authoritative) and, when positive, reads cgroup v1 or v2
// files to populate the rest of the Info.
func Detect() Info {
	info := Info{IsContainer: isContainer()}
	info.EffectiveCPUCount = float64(runtime.NumCPU())
	if !info.IsContainer {
		return info
	}

	readCgroupCPU(&info)
	readCgroupMemory(&info)

	info.EffectiveCPUCount = calculateEffectiveCPUs(info.CPUQuota, info.CPUPeriod, info.CpusetCPUs)
	return info
}

func isContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if inCgroupPath() {
		return true
	}
	if nsPidNested() {
		return true
	}
	return false
}

func inCgroupPath() bool {
	data, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return false
	}
	s := string(data)
	return strings.Contains(s, "/docker/") || strings.Contains(s, "/containerd/") || strings.Contains(s, "/kubepods/")
}

// nsPidNested reads /proc/self/status's NSpid line: >=2 entries means the
// process is visible under more than one PID namespace. This is an OR-ed
// signal only — see spec.md's Open Question on NSpid reliability.
func nsPidNested() bool {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "NSpid:") {
			fields := strings.Fields(strings.TrimPrefix(line, "NSpid:"))
			return len(fields) >= 2
		}
	}
	return false
}

// RefreshUsage re-reads only the live usage fields (memory current usage),
// leaving limits untouched, for readers that want fresher data than the
// startup-time detection without re-running the full probe.
func RefreshUsage(info *Info) {
	if !info.IsContainer {
		return
	}
	readCgroupMemoryUsageOnly(info)
}

func readUintFile(path string) (uint64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	s := strings.TrimSpace(string(data))
	if s == "max" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func readIntFile(path string) (int64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	s := strings.TrimSpace(string(data))
	if s == "max" || s == "-1" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
