package exporter

import (
	"testing"

	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/stretchr/testify/assert"
)

func TestWriteMemoryMetricsOmitsSwapWhenZero(t *testing.T) {
	b := NewBuilder()
	WriteMemoryMetrics(b, domain.MemorySnapshot{TotalBytes: 1024, UsedBytes: 512})
	out := b.String()
	assert.Contains(t, out, "all_smi_memory_total_bytes")
	assert.NotContains(t, out, "all_smi_memory_swap_total_bytes")
}

func TestWriteMemoryMetricsIncludesSwapWhenPresent(t *testing.T) {
	b := NewBuilder()
	WriteMemoryMetrics(b, domain.MemorySnapshot{TotalBytes: 1024, SwapTotalBytes: 2048})
	assert.Contains(t, b.String(), "all_smi_memory_swap_total_bytes")
}
