package exporter

import (
	"strconv"
	"strings"

	"github.com/all-smi-go/agent/daemon/domain"
)

// npuVendorAdapter emits vendor-specific metrics for one NPU snapshot.
// Exactly one adapter handles a given snapshot: the exporter tries a fast
// substring match on the device name first, then each adapter's CanHandle
// predicate (keyed on Detail fields only that vendor's reader populates),
// per spec.md §4.6's two-step NPU vendor dispatch.
type npuVendorAdapter struct {
	name       string
	nameSubstr string
	canHandle  func(d domain.DeviceSnapshot) bool
	write      func(b *Builder, d domain.DeviceSnapshot, labels []Label)
}

// npuVendorPool is the process-wide static pool, probed in the fixed order
// spec.md §4.6 names: Tenstorrent, Rebellions, Furiosa, Gaudi, TPU.
var npuVendorPool = []npuVendorAdapter{
	{
		name:       "tenstorrent",
		nameSubstr: "tenstorrent",
		canHandle:  func(d domain.DeviceSnapshot) bool { return hasDetailKey(d, "board_serial") },
		write:      writeTenstorrentMetrics,
	},
	{
		name:       "rebellions",
		nameSubstr: "rebellions",
		canHandle:  func(d domain.DeviceSnapshot) bool { return hasDetailKey(d, "serial_id") },
		write:      writeRebellionsMetrics,
	},
	{
		name:       "furiosa",
		nameSubstr: "furiosa",
		canHandle:  func(d domain.DeviceSnapshot) bool { return hasDetailKey(d, "computation_utilization") },
		write:      writeFuriosaMetrics,
	},
	{
		name:       "gaudi",
		nameSubstr: "gaudi",
		canHandle:  func(d domain.DeviceSnapshot) bool { return hasDetailKey(d, "power_max_w") },
		write:      writeGaudiMetrics,
	},
	{
		name:       "tpu",
		nameSubstr: "tpu",
		canHandle:  func(d domain.DeviceSnapshot) bool { return hasDetailKey(d, "device_id") },
		write:      writeTPUMetrics,
	},
}

// WriteNPUVendorMetrics dispatches to the matching vendor adapter, if any.
// The common device metrics (utilization, memory, temperature, power,
// frequency) were already written by WriteDeviceMetrics before this is
// called; this adds only the
// fields unique to the matched vendor's CLI/sysfs output.
func WriteNPUVendorMetrics(b *Builder, d domain.DeviceSnapshot, labels []Label) {
	lowerName := strings.ToLower(d.Name)
	for _, adapter := range npuVendorPool {
		if strings.Contains(lowerName, adapter.nameSubstr) {
			adapter.write(b, d, labels)
			return
		}
	}
	for _, adapter := range npuVendorPool {
		if adapter.canHandle(d) {
			adapter.write(b, d, labels)
			return
		}
	}
}

func hasDetailKey(d domain.DeviceSnapshot, key string) bool {
	if d.Detail == nil {
		return false
	}
	_, ok := d.Detail[key]
	return ok
}

func writeTenstorrentMetrics(b *Builder, d domain.DeviceSnapshot, labels []Label) {
	if v, ok := d.Detail["axiclk_mhz"]; ok {
		writeDetailGauge(b, "all_smi_axiclk_mhz", "AXI clock frequency in MHz", labels, v)
	}
	if v, ok := d.Detail["arcclk_mhz"]; ok {
		writeDetailGauge(b, "all_smi_arcclk_mhz", "ARC clock frequency in MHz", labels, v)
	}
	if v, ok := d.Detail["voltage_volts"]; ok {
		writeDetailGauge(b, "all_smi_voltage_volts", "Core voltage in volts", labels, v)
	}
	if v, ok := d.Detail["current_amperes"]; ok {
		writeDetailGauge(b, "all_smi_current_amperes", "Core current in amperes", labels, v)
	}
	if v, ok := d.Detail["driver_version"]; ok && v != "" {
		writeInfoMetric(b, "all_smi_tenstorrent_driver_version", "Tenstorrent driver version", labels)
	}
}

func writeRebellionsMetrics(b *Builder, d domain.DeviceSnapshot, labels []Label) {
	if v, ok := d.Detail["performance_state"]; ok && v != "" {
		withLabels := append(append([]Label{}, labels...), Label{Key: "pstate", Value: SanitizeLabelValue(v)})
		b.Help("all_smi_rebellions_pstate_info", "Rebellions performance state")
		b.Type("all_smi_rebellions_pstate_info", KindInfo)
		b.Metric("all_smi_rebellions_pstate_info", withLabels, 1)
	}
	if v, ok := d.Detail["kmd_version"]; ok && v != "" {
		writeInfoMetric(b, "all_smi_rebellions_kmd_version", "Rebellions kernel-mode driver version", labels)
	}
}

func writeFuriosaMetrics(b *Builder, d domain.DeviceSnapshot, labels []Label) {
	if v, ok := d.Detail["computation_utilization"]; ok {
		writeDetailGauge(b, "all_smi_npu_computation_utilization", "NPU computation engine utilization percentage", labels, v)
	}
	if v, ok := d.Detail["copy_utilization"]; ok {
		writeDetailGauge(b, "all_smi_npu_copy_utilization", "NPU copy engine utilization percentage", labels, v)
	}
	if v, ok := d.Detail["status"]; ok {
		running := 0.0
		if v == "running" {
			running = 1.0
		}
		b.Help("all_smi_npu_status", "NPU status (0=idle, 1=running)")
		b.Type("all_smi_npu_status", KindGauge)
		b.Metric("all_smi_npu_status", labels, running)
	}
}

func writeGaudiMetrics(b *Builder, d domain.DeviceSnapshot, labels []Label) {
	if v, ok := d.Detail["power_max_w"]; ok {
		writeDetailGauge(b, "all_smi_gaudi_power_limit_watts", "Gaudi power limit in watts", labels, v)
	}
	if v, ok := d.Detail["driver_version"]; ok && v != "" {
		writeInfoMetric(b, "all_smi_gaudi_driver_version", "Habana driver version", labels)
	}
}

func writeTPUMetrics(b *Builder, d domain.DeviceSnapshot, labels []Label) {
	if v, ok := d.Detail["device_id"]; ok && v != "" {
		withLabels := append(append([]Label{}, labels...), Label{Key: "device_id", Value: SanitizeLabelValue(v)})
		b.Help("all_smi_tpu_chip_info", "Google TPU chip identity")
		b.Type("all_smi_tpu_chip_info", KindInfo)
		b.Metric("all_smi_tpu_chip_info", withLabels, 1)
	}
}

// writeDetailGauge parses a Detail string value as a float and emits it as
// a gauge, skipping silently on parse failure (the field is vendor text,
// not guaranteed numeric across CLI versions).
func writeDetailGauge(b *Builder, name, help string, labels []Label, raw string) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return
	}
	b.Help(name, help)
	b.Type(name, KindGauge)
	b.Metric(name, labels, v)
}

func writeInfoMetric(b *Builder, name, help string, labels []Label) {
	b.Help(name, help)
	b.Type(name, KindInfo)
	b.Metric(name, labels, 1)
}
