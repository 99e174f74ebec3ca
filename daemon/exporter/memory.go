package exporter

import "github.com/all-smi-go/agent/daemon/domain"

// WriteMemoryMetrics appends one host's RAM and swap metrics.
func WriteMemoryMetrics(b *Builder, snap domain.MemorySnapshot) {
	labels := []Label{
		{Key: "instance", Value: snap.Instance},
		{Key: "hostname", Value: snap.Hostname},
		{Key: "host_id", Value: snap.HostID},
	}

	b.Help("all_smi_memory_total_bytes", "Total physical memory in bytes")
	b.Type("all_smi_memory_total_bytes", KindGauge)
	b.Metric("all_smi_memory_total_bytes", labels, float64(snap.TotalBytes))

	b.Help("all_smi_memory_used_bytes", "Used physical memory in bytes")
	b.Type("all_smi_memory_used_bytes", KindGauge)
	b.Metric("all_smi_memory_used_bytes", labels, float64(snap.UsedBytes))

	b.Help("all_smi_memory_available_bytes", "Available physical memory in bytes")
	b.Type("all_smi_memory_available_bytes", KindGauge)
	b.Metric("all_smi_memory_available_bytes", labels, float64(snap.AvailableBytes))

	b.Help("all_smi_memory_free_bytes", "Free physical memory in bytes")
	b.Type("all_smi_memory_free_bytes", KindGauge)
	b.Metric("all_smi_memory_free_bytes", labels, float64(snap.FreeBytes))

	b.Help("all_smi_memory_utilization", "Memory utilization percentage")
	b.Type("all_smi_memory_utilization", KindGauge)
	b.Metric("all_smi_memory_utilization", labels, snap.UtilizationPercent)

	if snap.BuffersBytes != 0 {
		b.Help("all_smi_memory_buffers_bytes", "Buffer cache memory in bytes")
		b.Type("all_smi_memory_buffers_bytes", KindGauge)
		b.Metric("all_smi_memory_buffers_bytes", labels, float64(snap.BuffersBytes))
	}

	if snap.CachedBytes != 0 {
		b.Help("all_smi_memory_cached_bytes", "Page cache memory in bytes")
		b.Type("all_smi_memory_cached_bytes", KindGauge)
		b.Metric("all_smi_memory_cached_bytes", labels, float64(snap.CachedBytes))
	}

	if snap.SwapTotalBytes != 0 {
		b.Help("all_smi_memory_swap_total_bytes", "Total swap space in bytes")
		b.Type("all_smi_memory_swap_total_bytes", KindGauge)
		b.Metric("all_smi_memory_swap_total_bytes", labels, float64(snap.SwapTotalBytes))

		b.Help("all_smi_memory_swap_used_bytes", "Used swap space in bytes")
		b.Type("all_smi_memory_swap_used_bytes", KindGauge)
		b.Metric("all_smi_memory_swap_used_bytes", labels, float64(snap.SwapUsedBytes))

		b.Help("all_smi_memory_swap_free_bytes", "Free swap space in bytes")
		b.Type("all_smi_memory_swap_free_bytes", KindGauge)
		b.Metric("all_smi_memory_swap_free_bytes", labels, float64(snap.SwapFreeBytes))
	}
}
