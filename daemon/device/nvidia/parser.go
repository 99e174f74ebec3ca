// Package nvidia implements the NVIDIA GPU adapter via `nvidia-smi`'s CSV
// query interface. Grounded in daemon/plugins/gpu/gpu.go's
// getNvidiaGPUs/parseNvidiaCSVLine (the teacher's nvidia-smi CSV approach,
// generalized here to cover the full field set original_source/src/device/
// nvidia.rs's NVML-based reader reports, since no NVML Go binding is wired
// in this pack — see DESIGN.md).
package nvidia

import (
	"fmt"
	"strconv"
	"strings"
)

const queryFields = "index,name,uuid,driver_version,temperature.gpu,power.draw,power.limit,utilization.gpu,memory.total,memory.used,memory.free,clocks.gr"

// Sample is one nvidia-smi CSV row.
type Sample struct {
	Index             int
	Name              string
	UUID              string
	DriverVersion     string
	TemperatureC      float64
	PowerDrawW        float64
	PowerLimitW       float64
	UtilizationPercent float64
	MemoryTotalMiB    uint64
	MemoryUsedMiB     uint64
	MemoryFreeMiB     uint64
	GraphicsClockMHz  uint32
}

// notSupported is nvidia-smi's sentinel for an absent field.
const notSupported = "[Not Supported]"

// ParseCSV parses nvidia-smi's `--query-gpu=... --format=csv,noheader,nounits`
// output, one Sample per device line. A field value of "[Not Supported]"
// or empty leaves the corresponding numeric field at zero rather than
// failing the line.
func ParseCSV(output string) ([]Sample, error) {
	var samples []Sample

	for _, rawLine := range strings.Split(output, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 12 {
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		index, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}

		samples = append(samples, Sample{
			Index:              index,
			Name:               fields[1],
			UUID:               fields[2],
			DriverVersion:      fields[3],
			TemperatureC:       parseOptionalFloat(fields[4]),
			PowerDrawW:         parseOptionalFloat(fields[5]),
			PowerLimitW:        parseOptionalFloat(fields[6]),
			UtilizationPercent: parseOptionalFloat(fields[7]),
			MemoryTotalMiB:     parseOptionalUint(fields[8]),
			MemoryUsedMiB:      parseOptionalUint(fields[9]),
			MemoryFreeMiB:      parseOptionalUint(fields[10]),
			GraphicsClockMHz:   uint32(parseOptionalUint(fields[11])),
		})
	}

	if len(samples) == 0 && strings.TrimSpace(output) != "" {
		return nil, fmt.Errorf("no parseable nvidia-smi rows in output")
	}
	return samples, nil
}

func parseOptionalFloat(s string) float64 {
	if s == notSupported || s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseOptionalUint(s string) uint64 {
	if s == notSupported || s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
