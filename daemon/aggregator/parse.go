// Package aggregator implements the fleet-aggregator client: it fetches
// every peer agent's Prometheus text endpoint, staggered and concurrency-
// capped, retries transient failures, and rehydrates the GPU/CPU/memory/
// storage snapshots the exporter originally emitted. Grounded in spec.md
// §4.7; the line grammar mirrors daemon/exporter's own output.
package aggregator

import (
	"strconv"
	"strings"

	"github.com/all-smi-go/agent/daemon/domain"
)

// parsedLine is one decoded `metric{labels} value` exposition line.
type parsedLine struct {
	name   string
	labels map[string]string
	value  float64
}

// parseExpositionLines decodes the subset of Prometheus text format the
// exporter emits: # HELP/# TYPE lines are skipped; malformed metric lines
// are skipped rather than aborting the parse, per spec.md §4.7 rule 4.
func parseExpositionLines(body string) []parsedLine {
	var out []parsedLine
	for _, rawLine := range strings.Split(body, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pl, ok := parseOneLine(line)
		if !ok {
			continue
		}
		out = append(out, pl)
	}
	return out
}

func parseOneLine(line string) (parsedLine, bool) {
	spaceIdx := strings.LastIndex(line, " ")
	if spaceIdx < 0 {
		return parsedLine{}, false
	}
	head, valueStr := line[:spaceIdx], strings.TrimSpace(line[spaceIdx+1:])
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return parsedLine{}, false
	}

	braceIdx := strings.Index(head, "{")
	if braceIdx < 0 {
		return parsedLine{name: head, labels: map[string]string{}, value: value}, true
	}
	if !strings.HasSuffix(head, "}") {
		return parsedLine{}, false
	}
	name := head[:braceIdx]
	labels, ok := parseLabels(head[braceIdx+1 : len(head)-1])
	if !ok {
		return parsedLine{}, false
	}
	return parsedLine{name: name, labels: labels, value: value}, true
}

// parseLabels splits a `k="v",k2="v2"` label body. Escaped quotes/backslash
// inside a value are unescaped; a malformed label body fails the whole line.
func parseLabels(body string) (map[string]string, bool) {
	labels := make(map[string]string)
	if body == "" {
		return labels, true
	}
	for _, pair := range splitLabelPairs(body) {
		eq := strings.Index(pair, "=")
		if eq < 0 {
			return nil, false
		}
		key := strings.TrimSpace(pair[:eq])
		val := strings.TrimSpace(pair[eq+1:])
		if len(val) < 2 || val[0] != '"' || val[len(val)-1] != '"' {
			return nil, false
		}
		labels[key] = unescapeLabelValue(val[1 : len(val)-1])
	}
	return labels, true
}

// splitLabelPairs splits on commas that are not inside a quoted value.
func splitLabelPairs(body string) []string {
	var pairs []string
	var cur strings.Builder
	inQuotes := false
	escaped := false
	for _, r := range body {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			cur.WriteRune(r)
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == ',' && !inQuotes:
			pairs = append(pairs, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		pairs = append(pairs, cur.String())
	}
	return pairs
}

func unescapeLabelValue(v string) string {
	v = strings.ReplaceAll(v, `\n`, "\n")
	v = strings.ReplaceAll(v, `\"`, `"`)
	v = strings.ReplaceAll(v, `\\`, `\`)
	return v
}

// ParsedSnapshots holds the rehydrated per-class snapshot lists from one
// peer's exposition body, per spec.md §4.7 rule 4/5.
type ParsedSnapshots struct {
	GPUs    []domain.DeviceSnapshot
	CPUs    []domain.CPUSnapshot
	Memory  []domain.MemorySnapshot
	Storage []domain.StorageSnapshot
}

// ParseExposition rehydrates GPU/NPU, CPU, memory, and storage snapshots
// from one peer's Prometheus text body, tagging every reconstructed record
// with peerHostID. Only the scalar fields the exposition format actually
// carries are reconstructed; per-core/per-socket CPU breakdowns and NPU
// vendor-specific metrics are not round-tripped (see DESIGN.md).
func ParseExposition(body, peerHostID string) ParsedSnapshots {
	lines := parseExpositionLines(body)

	devices := map[string]*domain.DeviceSnapshot{}
	cpus := map[string]*domain.CPUSnapshot{}
	mems := map[string]*domain.MemorySnapshot{}
	disks := map[string]*domain.StorageSnapshot{}

	for _, l := range lines {
		switch {
		case strings.HasPrefix(l.name, "all_smi_gpu_") || strings.HasPrefix(l.name, "all_smi_npu_"):
			applyDeviceField(devices, l, peerHostID)
		case strings.HasPrefix(l.name, "all_smi_cpu_") && l.labels["core"] == "" && l.labels["socket"] == "":
			applyCPUField(cpus, l, peerHostID)
		case strings.HasPrefix(l.name, "all_smi_memory_"):
			applyMemoryField(mems, l, peerHostID)
		case strings.HasPrefix(l.name, "all_smi_disk_"):
			applyStorageField(disks, l, peerHostID)
		}
	}

	out := ParsedSnapshots{}
	for _, d := range devices {
		out.GPUs = append(out.GPUs, *d)
	}
	for _, c := range cpus {
		out.CPUs = append(out.CPUs, *c)
	}
	for _, m := range mems {
		out.Memory = append(out.Memory, *m)
	}
	for _, s := range disks {
		out.Storage = append(out.Storage, *s)
	}
	return out
}

func applyDeviceField(devices map[string]*domain.DeviceSnapshot, l parsedLine, peerHostID string) {
	uuid := l.labels["uuid"]
	if uuid == "" {
		return
	}
	d, ok := devices[uuid]
	if !ok {
		d = &domain.DeviceSnapshot{
			UUID:     uuid,
			Instance: l.labels["instance"],
			Hostname: l.labels["hostname"],
			HostID:   peerHostID,
			Type:     domain.DeviceTypeGPU,
		}
		if name, ok := l.labels["gpu"]; ok {
			d.Name = name
		}
		if name, ok := l.labels["npu"]; ok {
			d.Name = name
			d.Type = domain.DeviceTypeNPU
		}
		devices[uuid] = d
	}

	switch {
	case l.name == "all_smi_gpu_utilization" || l.name == "all_smi_npu_utilization":
		d.UtilizationPercent = l.value
	case strings.HasSuffix(l.name, "_memory_used_bytes"):
		d.UsedMemoryBytes = uint64(l.value)
	case strings.HasSuffix(l.name, "_memory_total_bytes"):
		d.TotalMemoryBytes = uint64(l.value)
	case strings.HasSuffix(l.name, "_temperature_celsius"):
		d.TemperatureC = l.value
	case strings.HasSuffix(l.name, "_power_consumption_watts"):
		d.PowerWatts = l.value
	case strings.HasSuffix(l.name, "_frequency_mhz"):
		d.FrequencyMHz = uint32(l.value)
	}
}

func applyCPUField(cpus map[string]*domain.CPUSnapshot, l parsedLine, peerHostID string) {
	instance := l.labels["instance"]
	c, ok := cpus[instance]
	if !ok {
		c = &domain.CPUSnapshot{
			Instance: instance,
			Hostname: l.labels["hostname"],
			HostID:   peerHostID,
			Model:    l.labels["model"],
		}
		cpus[instance] = c
	}

	switch l.name {
	case "all_smi_cpu_utilization":
		c.UtilizationPercent = l.value
	case "all_smi_cpu_socket_count":
		c.SocketCount = int(l.value)
	case "all_smi_cpu_core_count":
		c.TotalCores = int(l.value)
	case "all_smi_cpu_thread_count":
		c.TotalThreads = int(l.value)
	case "all_smi_cpu_base_frequency_mhz":
		c.BaseFrequencyMHz = uint32(l.value)
	case "all_smi_cpu_max_frequency_mhz":
		c.MaxFrequencyMHz = uint32(l.value)
	case "all_smi_cpu_temperature_celsius":
		v := l.value
		c.TemperatureC = &v
	case "all_smi_cpu_power_consumption_watts":
		v := l.value
		c.PowerWatts = &v
	}
}

func applyMemoryField(mems map[string]*domain.MemorySnapshot, l parsedLine, peerHostID string) {
	instance := l.labels["instance"]
	m, ok := mems[instance]
	if !ok {
		m = &domain.MemorySnapshot{Instance: instance, Hostname: l.labels["hostname"], HostID: peerHostID}
		mems[instance] = m
	}

	switch l.name {
	case "all_smi_memory_total_bytes":
		m.TotalBytes = uint64(l.value)
	case "all_smi_memory_used_bytes":
		m.UsedBytes = uint64(l.value)
	case "all_smi_memory_available_bytes":
		m.AvailableBytes = uint64(l.value)
	case "all_smi_memory_free_bytes":
		m.FreeBytes = uint64(l.value)
	case "all_smi_memory_buffers_bytes":
		m.BuffersBytes = uint64(l.value)
	case "all_smi_memory_cached_bytes":
		m.CachedBytes = uint64(l.value)
	case "all_smi_memory_utilization":
		m.UtilizationPercent = l.value
	case "all_smi_memory_swap_total_bytes":
		m.SwapTotalBytes = uint64(l.value)
	case "all_smi_memory_swap_used_bytes":
		m.SwapUsedBytes = uint64(l.value)
	case "all_smi_memory_swap_free_bytes":
		m.SwapFreeBytes = uint64(l.value)
	}
}

func applyStorageField(disks map[string]*domain.StorageSnapshot, l parsedLine, peerHostID string) {
	key := l.labels["instance"] + "|" + l.labels["mount_point"]
	s, ok := disks[key]
	if !ok {
		index, _ := strconv.Atoi(l.labels["index"])
		s = &domain.StorageSnapshot{
			Instance:   l.labels["instance"],
			Hostname:   l.labels["hostname"],
			HostID:     peerHostID,
			MountPoint: l.labels["mount_point"],
			Index:      index,
		}
		disks[key] = s
	}

	switch l.name {
	case "all_smi_disk_total_bytes":
		s.TotalBytes = uint64(l.value)
	case "all_smi_disk_available_bytes":
		s.AvailableBytes = uint64(l.value)
	}
}
