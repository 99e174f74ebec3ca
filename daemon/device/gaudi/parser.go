// Package gaudi implements the Intel Gaudi (Habana) NPU adapter. hl-smi
// publishes a continuous CSV stream cheaply when invoked once with `-l`,
// so the reader consumes it through daemon/collector rather than shelling
// out per scrape. Grounded in original_source/src/device/hlsmi/parser.rs
// and store.rs.
package gaudi

import (
	"fmt"
	"strconv"
	"strings"
)

// MetricsData is one hl-smi CSV snapshot: every device row parsed together.
type MetricsData struct {
	Devices []DeviceMetrics
}

// DeviceMetrics is a single Gaudi device's row.
type DeviceMetrics struct {
	Index          uint32
	UUID           string
	Name           string
	DriverVersion  string
	MemoryTotalMiB uint64
	MemoryUsedMiB  uint64
	MemoryFreeMiB  uint64
	PowerDrawW     float64
	PowerMaxW      float64
	TemperatureC   uint32
	Utilization    float64
}

// MapDeviceName translates hl-smi's internal "HL-XYZ[suffix]" model string
// into a human-friendly name, per Intel Gaudi's product naming convention.
func MapDeviceName(internal string) string {
	name := strings.TrimSpace(internal)

	switch {
	case strings.HasPrefix(name, "HL-100"):
		return "Intel Gaudi"
	case strings.HasPrefix(name, "HL-2"):
		variant := ""
		switch {
		case strings.HasPrefix(name, "HL-200"):
			variant = "Mezzanine"
		case strings.HasPrefix(name, "HL-205"):
			variant = "PCIe"
		case strings.HasPrefix(name, "HL-225"):
			variant = "OAM"
		}
		if variant == "" {
			return "Intel Gaudi 2"
		}
		return "Intel Gaudi 2 " + variant
	case strings.HasPrefix(name, "HL-3"):
		variant, suffix := "", ""
		switch {
		case strings.HasPrefix(name, "HL-325L"):
			variant, suffix = "PCIe", " LP"
		case strings.HasPrefix(name, "HL-325"):
			variant = "PCIe"
		case strings.HasPrefix(name, "HL-328"):
			variant = "OAM"
		case strings.HasPrefix(name, "HL-338"):
			variant = "UBB"
		case strings.HasPrefix(name, "HL-388"):
			variant = "HLS"
		}
		if variant == "" {
			return "Intel Gaudi 3"
		}
		return "Intel Gaudi 3 " + variant + suffix
	case strings.HasPrefix(name, "HL-4"):
		return "Intel Gaudi 4"
	case strings.HasPrefix(name, "HL-5"):
		return "Intel Gaudi 5"
	default:
		return "Intel " + name
	}
}

// ParseHLSMIOutput parses a complete hl-smi CSV sample (one or more lines,
// one per device). Malformed lines (fewer than 11 comma fields) are
// skipped rather than failing the whole sample.
//
// Expected column order: index,uuid,name,driver_version,memory.total,
// memory.used,memory.free,power.draw,power.max,temperature.aip,utilization.aip
func ParseHLSMIOutput(output string) (MetricsData, error) {
	var data MetricsData

	for _, rawLine := range strings.Split(output, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) < 11 {
			continue
		}

		index, err := parseIndex(parts[0])
		if err != nil {
			continue
		}
		memTotal, err := parseMemoryMiB(parts[4])
		if err != nil {
			continue
		}
		memUsed, err := parseMemoryMiB(parts[5])
		if err != nil {
			continue
		}
		memFree, err := parseMemoryMiB(parts[6])
		if err != nil {
			continue
		}
		powerDraw, err := parsePower(parts[7])
		if err != nil {
			continue
		}
		powerMax, err := parsePower(parts[8])
		if err != nil {
			continue
		}
		temp, err := parseTemperature(parts[9])
		if err != nil {
			continue
		}
		util, err := parseUtilization(parts[10])
		if err != nil {
			continue
		}

		data.Devices = append(data.Devices, DeviceMetrics{
			Index:          index,
			UUID:           parts[1],
			Name:           parts[2],
			DriverVersion:  StripDriverRevision(parts[3]),
			MemoryTotalMiB: memTotal,
			MemoryUsedMiB:  memUsed,
			MemoryFreeMiB:  memFree,
			PowerDrawW:     powerDraw,
			PowerMaxW:      powerMax,
			TemperatureC:   temp,
			Utilization:    util,
		})
	}

	return data, nil
}

func parseIndex(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("index %q: %w", s, err)
	}
	return uint32(v), nil
}

func parseMemoryMiB(s string) (uint64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "MiB"))
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("memory %q: %w", s, err)
	}
	return v, nil
}

func parsePower(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "W"))
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("power %q: %w", s, err)
	}
	return v, nil
}

func parseTemperature(s string) (uint32, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "C"))
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("temperature %q: %w", s, err)
	}
	return uint32(v), nil
}

func parseUtilization(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("utilization %q: %w", s, err)
	}
	return v, nil
}

// StripDriverRevision removes a trailing "-<hex>" revision suffix of at
// least 6 hex characters, e.g. "1.22.1-97ec1a4" -> "1.22.1". Strings
// without such a suffix (including non-hex suffixes like "-release") are
// returned unchanged.
func StripDriverRevision(s string) string {
	s = strings.TrimSpace(s)
	idx := strings.LastIndexByte(s, '-')
	if idx < 0 {
		return s
	}
	suffix := s[idx+1:]
	if len(suffix) >= 6 && isHex(suffix) {
		return s[:idx]
	}
	return s
}

func isHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
