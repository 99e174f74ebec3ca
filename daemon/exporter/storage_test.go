package exporter

import (
	"testing"

	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/stretchr/testify/assert"
)

func TestWriteStorageMetricsComputesUsedFromTotalMinusAvailable(t *testing.T) {
	b := NewBuilder()
	WriteStorageMetrics(b, []domain.StorageSnapshot{{
		MountPoint:     "/",
		TotalBytes:     1000,
		AvailableBytes: 400,
		Index:          0,
	}})
	assert.Contains(t, b.String(), "all_smi_disk_used_bytes{") // 600
	assert.Contains(t, b.String(), " 600\n")
}
