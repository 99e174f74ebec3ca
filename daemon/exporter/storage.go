package exporter

import (
	"strconv"

	"github.com/all-smi-go/agent/daemon/domain"
)

// WriteStorageMetrics appends metrics for one host's mounted volumes.
func WriteStorageMetrics(b *Builder, snapshots []domain.StorageSnapshot) {
	for _, s := range snapshots {
		labels := []Label{
			{Key: "instance", Value: s.Instance},
			{Key: "hostname", Value: s.Hostname},
			{Key: "host_id", Value: s.HostID},
			{Key: "index", Value: strconv.Itoa(s.Index)},
			{Key: "mount_point", Value: SanitizeLabelValue(s.MountPoint)},
		}

		b.Help("all_smi_disk_total_bytes", "Total storage capacity in bytes")
		b.Type("all_smi_disk_total_bytes", KindGauge)
		b.Metric("all_smi_disk_total_bytes", labels, float64(s.TotalBytes))

		b.Help("all_smi_disk_available_bytes", "Available storage capacity in bytes")
		b.Type("all_smi_disk_available_bytes", KindGauge)
		b.Metric("all_smi_disk_available_bytes", labels, float64(s.AvailableBytes))

		used := s.TotalBytes - s.AvailableBytes
		b.Help("all_smi_disk_used_bytes", "Used storage capacity in bytes")
		b.Type("all_smi_disk_used_bytes", KindGauge)
		b.Metric("all_smi_disk_used_bytes", labels, float64(used))
	}
}
