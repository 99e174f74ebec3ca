//go:build linux

package chassis

import (
	"context"
	"strconv"
	"strings"

	"github.com/all-smi-go/agent/daemon/command"
	"github.com/all-smi-go/agent/daemon/domain"
)

// Reader implements domain.ChassisReader on Linux using `sensors -A -u`
// (lm-sensors) for fan readings (PSU and temperature readings are not
// collected), grounded in
// daemon/plugins/system/system.go's GetEnhancedTemperatureData, plus a
// shared GPUPowerCache for total GPU power (spec.md §4.3/§9).
type Reader struct {
	hostID, hostname, instance string
	gpuPower                   *GPUPowerCache
}

// NewReader constructs a Linux chassis reader. gpuPower must be the same
// cache instance the exporter writes to after each scrape.
func NewReader(hostID, hostname, instance string, gpuPower *GPUPowerCache) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance, gpuPower: gpuPower}
}

func (r *Reader) ReaderName() string { return "chassis-linux" }

// SnapshotChassis shells out to `sensors -A -u` for fan readings and
// reports the cached aggregate GPU power as TotalPowerWatts when available.
// A sensors failure is non-fatal: an empty chassis reading is returned.
func (r *Reader) SnapshotChassis(ctx context.Context) (domain.ChassisSnapshot, error) {
	snap := domain.ChassisSnapshot{
		HostID:   r.hostID,
		Hostname: r.hostname,
		Instance: r.instance,
		Detail:   map[string]string{},
	}

	if r.gpuPower != nil {
		if watts, ok := r.gpuPower.Get(); ok {
			snap.TotalPowerWatts = &watts
		}
	}

	out, err := command.Output(ctx, "chassis-linux", command.Options{}, "sensors", "-A", "-u")
	if err != nil {
		return snap, nil
	}
	snap.Fans = parseFanReadings(out)

	return snap, nil
}

// parseFanReadings scans `sensors -A -u` output for fanN_input lines,
// grouped by the nearest preceding non-indented chip/feature label. Other
// fan lines (fanN_max, fanN_min) are ignored, so MaxRPM stays zero.
func parseFanReadings(output string) []domain.FanReading {
	var fans []domain.FanReading
	currentLabel := ""
	var currentRPM uint32
	haveRPM := false

	flush := func() {
		if haveRPM {
			fans = append(fans, domain.FanReading{Name: currentLabel, CurrentRPM: currentRPM})
		}
		haveRPM = false
	}

	for _, rawLine := range strings.Split(output, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") && strings.HasSuffix(trimmed, ":") {
			flush()
			currentLabel = strings.TrimSuffix(trimmed, ":")
			continue
		}
		if strings.Contains(trimmed, "fan") && strings.Contains(trimmed, "_input:") {
			parts := strings.SplitN(trimmed, ":", 2)
			if len(parts) == 2 {
				if v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err == nil {
					flush()
					currentRPM = uint32(v)
					haveRPM = true
				}
			}
		}
	}
	flush()
	return fans
}
