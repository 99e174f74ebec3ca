package exporter

import (
	"strconv"

	"github.com/all-smi-go/agent/daemon/domain"
)

// WriteDeviceMetrics appends GPU and NPU metrics for one scrape's device
// list. Common fields (utilization, memory, temperature, power, frequency)
// are emitted for every device regardless of class; a metric is omitted
// entirely when its source value is absent, per spec.md §4.6.
func WriteDeviceMetrics(b *Builder, devices []domain.DeviceSnapshot) {
	for i, d := range devices {
		labels := deviceLabels(d, i)

		class := "gpu"
		if d.Type == domain.DeviceTypeNPU {
			class = "npu"
		}

		b.Help("all_smi_"+class+"_utilization", "Device utilization percentage")
		b.Type("all_smi_"+class+"_utilization", KindGauge)
		b.Metric("all_smi_"+class+"_utilization", labels, d.UtilizationPercent)

		if d.TotalMemoryBytes > 0 {
			b.Help("all_smi_"+class+"_memory_used_bytes", "Device memory used in bytes")
			b.Type("all_smi_"+class+"_memory_used_bytes", KindGauge)
			b.Metric("all_smi_"+class+"_memory_used_bytes", labels, float64(d.UsedMemoryBytes))

			b.Help("all_smi_"+class+"_memory_total_bytes", "Device memory total in bytes")
			b.Type("all_smi_"+class+"_memory_total_bytes", KindGauge)
			b.Metric("all_smi_"+class+"_memory_total_bytes", labels, float64(d.TotalMemoryBytes))
		}

		if d.TemperatureC != 0 {
			b.Help("all_smi_"+class+"_temperature_celsius", "Device temperature in celsius")
			b.Type("all_smi_"+class+"_temperature_celsius", KindGauge)
			b.Metric("all_smi_"+class+"_temperature_celsius", labels, d.TemperatureC)
		}

		if d.PowerWatts != 0 {
			b.Help("all_smi_"+class+"_power_consumption_watts", "Device power consumption in watts")
			b.Type("all_smi_"+class+"_power_consumption_watts", KindGauge)
			b.Metric("all_smi_"+class+"_power_consumption_watts", labels, d.PowerWatts)
		}

		if d.FrequencyMHz != 0 {
			b.Help("all_smi_"+class+"_frequency_mhz", "Device core frequency in MHz")
			b.Type("all_smi_"+class+"_frequency_mhz", KindGauge)
			b.Metric("all_smi_"+class+"_frequency_mhz", labels, float64(d.FrequencyMHz))
		}

		if d.ANEUtilizationMW != nil {
			b.Help("all_smi_ane_utilization", "Apple Neural Engine power draw in milliwatts")
			b.Type("all_smi_ane_utilization", KindGauge)
			b.Metric("all_smi_ane_utilization", labels, *d.ANEUtilizationMW)
		}

		if d.DLAUtilizationPercent != nil {
			b.Help("all_smi_dla_utilization", "Deep Learning Accelerator utilization percentage")
			b.Type("all_smi_dla_utilization", KindGauge)
			b.Metric("all_smi_dla_utilization", labels, *d.DLAUtilizationPercent)
		}

		if d.TensorCoreUtilization != nil {
			b.Help("all_smi_tpu_tensorcore_utilization", "TPU tensor-core utilization percentage")
			b.Type("all_smi_tpu_tensorcore_utilization", KindGauge)
			b.Metric("all_smi_tpu_tensorcore_utilization", labels, *d.TensorCoreUtilization)
		}

		if d.GPUCoreCount != nil {
			b.Help("all_smi_gpu_core_count", "Number of GPU cores")
			b.Type("all_smi_gpu_core_count", KindGauge)
			b.Metric("all_smi_gpu_core_count", labels, float64(*d.GPUCoreCount))
		}

		if d.Type == domain.DeviceTypeNPU {
			WriteNPUVendorMetrics(b, d, labels)
		}
	}
}

// deviceLabels builds the standard label set spec.md §4.6 prescribes:
// instance, hostname, host_id, index, uuid, plus gpu|npu naming the device.
func deviceLabels(d domain.DeviceSnapshot, index int) []Label {
	classLabel := "gpu"
	if d.Type == domain.DeviceTypeNPU {
		classLabel = "npu"
	}
	return []Label{
		{Key: "instance", Value: d.Instance},
		{Key: "hostname", Value: d.Hostname},
		{Key: "host_id", Value: d.HostID},
		{Key: "index", Value: strconv.Itoa(index)},
		{Key: "uuid", Value: d.UUID},
		{Key: classLabel, Value: SanitizeLabelValue(d.Name)},
	}
}
