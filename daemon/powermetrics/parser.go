// Package powermetrics parses macOS `powermetrics` text samples and
// supervises the single shared child process all Apple-Silicon readers
// (CPU, GPU/ANE, chassis) draw from. Grounded in spec.md §4.4/§8 seed case 2
// and the line-oriented key/value shape the original_source's
// macos_native/metrics.rs NativeMetricsData models (IOReport fields
// re-expressed here as powermetrics' own textual field names, since a pure
// Go build has no private-framework IOReport/SMC bindings — see DESIGN.md).
package powermetrics

import (
	"strconv"
	"strings"
)

// Sample is one powermetrics reporting interval, flattened across the
// cpu_power/gpu_power/ane_power/thermal/tasks samplers spec.md §6 invokes.
type Sample struct {
	EClusterResidencyPercent float64
	PClusterResidencyPercent float64
	EClusterFrequencyMHz     uint32
	PClusterFrequencyMHz     uint32
	CPUPowerMW               float64

	GPUActiveResidencyPercent float64
	GPUFrequencyMHz           uint32
	GPUPowerMW                float64

	ANEPowerMW float64

	CombinedPowerMW float64

	ThermalPressure string // e.g. "Nominal", "Fair", "Serious", "Critical"
}

// Parse reads one powermetrics sample block. Unrecognized or absent lines
// leave the corresponding field at its zero value; this function never
// fails, matching spec.md §8 seed case 2 ("no error" on a minimal sample).
func Parse(block string) (Sample, error) {
	var s Sample

	for _, rawLine := range strings.Split(block, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || !strings.Contains(line, ":") {
			continue
		}
		key, value, ok := splitKV(line)
		if !ok {
			continue
		}

		switch {
		case strings.EqualFold(key, "E-Cluster HW active residency"):
			s.EClusterResidencyPercent = parsePercent(value)
		case strings.EqualFold(key, "P-Cluster HW active residency"):
			s.PClusterResidencyPercent = parsePercent(value)
		case strings.EqualFold(key, "E-Cluster HW active frequency"):
			s.EClusterFrequencyMHz = parseMHz(value)
		case strings.EqualFold(key, "P-Cluster HW active frequency"):
			s.PClusterFrequencyMHz = parseMHz(value)
		case strings.EqualFold(key, "CPU Power"):
			s.CPUPowerMW = parseMW(value)
		case strings.EqualFold(key, "GPU HW active residency"):
			s.GPUActiveResidencyPercent = parsePercent(value)
		case strings.EqualFold(key, "GPU HW active frequency"):
			s.GPUFrequencyMHz = parseMHz(value)
		case strings.EqualFold(key, "GPU Power"):
			s.GPUPowerMW = parseMW(value)
		case strings.EqualFold(key, "ANE Power"):
			s.ANEPowerMW = parseMW(value)
		case strings.EqualFold(key, "Combined Power (CPU + GPU + ANE)"):
			s.CombinedPowerMW = parseMW(value)
		case strings.EqualFold(key, "Current pressure level"):
			s.ThermalPressure = strings.TrimSpace(value)
		}
	}

	if s.CombinedPowerMW == 0 {
		s.CombinedPowerMW = s.CPUPowerMW + s.GPUPowerMW + s.ANEPowerMW
	}

	return s, nil
}

// CPUUtilizationPercent applies spec.md §4.3's Apple-Silicon weighting:
// 0.3*E-cluster + 0.7*P-cluster.
func (s Sample) CPUUtilizationPercent() float64 {
	return 0.3*s.EClusterResidencyPercent + 0.7*s.PClusterResidencyPercent
}

func splitKV(line string) (key, value string, ok bool) {
	idx := strings.LastIndex(line, ":")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

func parsePercent(v string) float64 {
	v = strings.TrimSuffix(strings.TrimSpace(v), "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseMHz(v string) uint32 {
	v = strings.TrimSuffix(strings.TrimSpace(v), "MHz")
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return uint32(f)
}

func parseMW(v string) float64 {
	v = strings.TrimSpace(v)
	switch {
	case strings.HasSuffix(v, "mW"):
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "mW")), 64)
		if err != nil {
			return 0
		}
		return f
	case strings.HasSuffix(v, "W"):
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "W")), 64)
		if err != nil {
			return 0
		}
		return f * 1000
	default:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
}
