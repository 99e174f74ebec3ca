package exporter

import (
	"testing"

	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/stretchr/testify/assert"
)

func TestWriteCPUMetricsIncludesPerCoreAndSocket(t *testing.T) {
	b := NewBuilder()
	snap := domain.CPUSnapshot{
		Model:              "Test CPU",
		SocketCount:        1,
		TotalCores:         4,
		TotalThreads:       8,
		UtilizationPercent: 33.3,
		PerCore: []domain.CoreUtilization{
			{CoreID: 0, Type: domain.CoreTypeStandard, UtilizationPercent: 20},
		},
		PerSocket: []domain.CPUSocketInfo{{SocketID: 0, Utilization: 33.3, Cores: 4, Threads: 8}},
	}
	WriteCPUMetrics(b, snap)
	out := b.String()
	assert.Contains(t, out, `all_smi_cpu_core_utilization{`)
	assert.Contains(t, out, `all_smi_cpu_socket_utilization{`)
	assert.NotContains(t, out, "all_smi_cpu_temperature_celsius")
}

func TestWriteCPUMetricsIncludesAppleSiliconFields(t *testing.T) {
	b := NewBuilder()
	snap := domain.CPUSnapshot{
		AppleSiliconInfo: &domain.AppleSiliconCPUInfo{
			PCoreCount:       4,
			ECoreCount:       4,
			PCoreUtilization: 70,
			ECoreUtilization: 30,
		},
	}
	WriteCPUMetrics(b, snap)
	out := b.String()
	assert.Contains(t, out, "all_smi_cpu_pcore_utilization")
	assert.Contains(t, out, "all_smi_cpu_ecore_utilization")
}
