package exporter

import (
	"strconv"

	"github.com/all-smi-go/agent/daemon/domain"
)

// WriteCPUMetrics appends one host's CPU metrics.
func WriteCPUMetrics(b *Builder, snap domain.CPUSnapshot) {
	labels := []Label{
		{Key: "instance", Value: snap.Instance},
		{Key: "hostname", Value: snap.Hostname},
		{Key: "host_id", Value: snap.HostID},
		{Key: "model", Value: SanitizeLabelValue(snap.Model)},
	}

	b.Help("all_smi_cpu_utilization", "CPU utilization percentage")
	b.Type("all_smi_cpu_utilization", KindGauge)
	b.Metric("all_smi_cpu_utilization", labels, snap.UtilizationPercent)

	b.Help("all_smi_cpu_socket_count", "Number of CPU sockets")
	b.Type("all_smi_cpu_socket_count", KindGauge)
	b.Metric("all_smi_cpu_socket_count", labels, float64(snap.SocketCount))

	b.Help("all_smi_cpu_core_count", "Number of CPU cores")
	b.Type("all_smi_cpu_core_count", KindGauge)
	b.Metric("all_smi_cpu_core_count", labels, float64(snap.TotalCores))

	b.Help("all_smi_cpu_thread_count", "Number of CPU threads")
	b.Type("all_smi_cpu_thread_count", KindGauge)
	b.Metric("all_smi_cpu_thread_count", labels, float64(snap.TotalThreads))

	if snap.BaseFrequencyMHz != 0 {
		b.Help("all_smi_cpu_base_frequency_mhz", "CPU base frequency in MHz")
		b.Type("all_smi_cpu_base_frequency_mhz", KindGauge)
		b.Metric("all_smi_cpu_base_frequency_mhz", labels, float64(snap.BaseFrequencyMHz))
	}

	if snap.MaxFrequencyMHz != 0 {
		b.Help("all_smi_cpu_max_frequency_mhz", "CPU maximum frequency in MHz")
		b.Type("all_smi_cpu_max_frequency_mhz", KindGauge)
		b.Metric("all_smi_cpu_max_frequency_mhz", labels, float64(snap.MaxFrequencyMHz))
	}

	if snap.TemperatureC != nil {
		b.Help("all_smi_cpu_temperature_celsius", "CPU temperature in celsius")
		b.Type("all_smi_cpu_temperature_celsius", KindGauge)
		b.Metric("all_smi_cpu_temperature_celsius", labels, *snap.TemperatureC)
	}

	if snap.PowerWatts != nil {
		b.Help("all_smi_cpu_power_consumption_watts", "CPU power consumption in watts")
		b.Type("all_smi_cpu_power_consumption_watts", KindGauge)
		b.Metric("all_smi_cpu_power_consumption_watts", labels, *snap.PowerWatts)
	}

	for _, core := range snap.PerCore {
		coreLabels := append(append([]Label{}, labels...),
			Label{Key: "core", Value: strconv.Itoa(core.CoreID)},
			Label{Key: "core_type", Value: string(core.Type)},
		)
		b.Help("all_smi_cpu_core_utilization", "Per-core CPU utilization percentage")
		b.Type("all_smi_cpu_core_utilization", KindGauge)
		b.Metric("all_smi_cpu_core_utilization", coreLabels, core.UtilizationPercent)
	}

	for _, socket := range snap.PerSocket {
		socketLabels := append(append([]Label{}, labels...),
			Label{Key: "socket", Value: strconv.Itoa(socket.SocketID)},
		)
		b.Help("all_smi_cpu_socket_utilization", "Per-socket CPU utilization percentage")
		b.Type("all_smi_cpu_socket_utilization", KindGauge)
		b.Metric("all_smi_cpu_socket_utilization", socketLabels, socket.Utilization)
	}

	if info := snap.AppleSiliconInfo; info != nil {
		b.Help("all_smi_cpu_pcore_utilization", "Apple Silicon P-core cluster utilization percentage")
		b.Type("all_smi_cpu_pcore_utilization", KindGauge)
		b.Metric("all_smi_cpu_pcore_utilization", labels, info.PCoreUtilization)

		b.Help("all_smi_cpu_ecore_utilization", "Apple Silicon E-core cluster utilization percentage")
		b.Type("all_smi_cpu_ecore_utilization", KindGauge)
		b.Metric("all_smi_cpu_ecore_utilization", labels, info.ECoreUtilization)

		if info.ANEOpsPerSecond != nil {
			b.Help("all_smi_cpu_ane_ops_per_second", "Apple Neural Engine operations per second")
			b.Type("all_smi_cpu_ane_ops_per_second", KindGauge)
			b.Metric("all_smi_cpu_ane_ops_per_second", labels, *info.ANEOpsPerSecond)
		}
	}
}
