//go:build linux

// Package jetson implements the NVIDIA Jetson adapter. Jetson parts expose
// no nvidia-smi device query (the iGPU lives on the tegra SoC, not on
// NVML) so every reading comes from sysfs/device-tree, grounded in
// original_source/src/device/nvidia_jetson.rs.
package jetson

import (
	"os"
	"strconv"
	"strings"
)

const (
	modelPath       = "/proc/device-tree/model"
	gpuLoadPath     = "/sys/devices/platform/tegra-soc/gpu.0/load"
	gpuFreqPath     = "/sys/devices/platform/tegra-soc/gpu.0/cur_freq"
	thermalZonePath = "/sys/devices/virtual/thermal/thermal_zone0/temp"
	powerPath       = "/sys/bus/i2c/drivers/ina3221x/0-0040/iio:device0/in_power0_input"
	dla0LoadPath    = "/sys/kernel/debug/dla_0/load"
	dla1LoadPath    = "/sys/kernel/debug/dla_1/load"
	socFamilyPath   = "/sys/devices/soc0/family"
	meminfoPath     = "/proc/meminfo"
)

// Sample is one Jetson SoC reading.
type Sample struct {
	Name               string
	Architecture       string
	ComputeCapability  string
	UtilizationPercent float64
	FrequencyMHz       uint32
	TemperatureC       float64
	PowerWatts         float64
	DLAUtilization     *float64
	TotalMemoryBytes   uint64
	UsedMemoryBytes    uint64
}

// Read gathers one Sample from sysfs. It never fails: an unreadable sensor
// leaves the corresponding field at its zero value, matching the rest of
// this codebase's "partial data is not an error" rule.
func Read() Sample {
	name := readTrimmed(modelPath)
	if name == "" {
		name = "NVIDIA Jetson"
	}
	name = strings.TrimRight(name, "\x00")

	s := Sample{
		Name:               name,
		UtilizationPercent: readFloat(gpuLoadPath) / 10.0,
		FrequencyMHz:       uint32(readUint(gpuFreqPath) / 1_000_000),
		TemperatureC:       float64(readUint(thermalZonePath)) / 1000.0,
		PowerWatts:         readFloat(powerPath) / 1000.0,
		Architecture:       readTrimmed(socFamilyPath),
	}

	dla0 := readFloat(dla0LoadPath)
	dla1 := readFloat(dla1LoadPath)
	if dla0 > 0 || dla1 > 0 {
		total := dla0 + dla1
		s.DLAUtilization = &total
	}

	s.ComputeCapability = computeCapability(name)
	s.TotalMemoryBytes, s.UsedMemoryBytes = readMemInfo()

	return s
}

// computeCapability maps a Jetson model name to its CUDA compute
// capability, per original_source/src/device/nvidia_jetson.rs.
func computeCapability(name string) string {
	switch {
	case strings.Contains(name, "Orin"):
		return "8.7"
	case strings.Contains(name, "Xavier"):
		return "7.2"
	case strings.Contains(name, "TX2"), strings.Contains(name, "Nano"):
		return "5.3"
	default:
		return ""
	}
}

func readMemInfo() (total, used uint64) {
	data, err := os.ReadFile(meminfoPath)
	if err != nil {
		return 0, 0
	}
	var available uint64
	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			total = parseMeminfoField(line) * 1024
		case strings.HasPrefix(line, "MemAvailable:"):
			available = parseMeminfoField(line) * 1024
		}
	}
	if total > available {
		used = total - available
	}
	return total, used
}

func parseMeminfoField(line string) uint64 {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	v, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func readFloat(path string) float64 {
	s := readTrimmed(path)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func readUint(path string) uint64 {
	s := readTrimmed(path)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
