//go:build linux

package cpu

import (
	"testing"

	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/prometheus/procfs"
	"github.com/stretchr/testify/assert"
)

func TestSummarizeCPUInfoSingleSocket(t *testing.T) {
	infos := []procfs.CPUInfo{
		{ModelName: "Intel(R) Xeon(R)", PhysicalID: "0", CPUMHz: 2400, CacheSize: "8192 KB"},
		{ModelName: "Intel(R) Xeon(R)", PhysicalID: "0", CPUMHz: 2400, CacheSize: "8192 KB"},
	}
	s := summarizeCPUInfo(infos)

	assert.Equal(t, domain.PlatformIntel, s.platform)
	assert.Equal(t, 1, s.socketCount)
	assert.Equal(t, 2, s.totalCores)
	assert.Equal(t, uint32(2400), s.baseFreqMHz)
	assert.Equal(t, uint32(8), s.cacheSizeMB)
}

func TestSummarizeCPUInfoMultiSocket(t *testing.T) {
	infos := []procfs.CPUInfo{
		{ModelName: "AMD EPYC", PhysicalID: "0"},
		{ModelName: "AMD EPYC", PhysicalID: "1"},
	}
	s := summarizeCPUInfo(infos)
	assert.Equal(t, domain.PlatformAMD, s.platform)
	assert.Equal(t, 2, s.socketCount)
}

func TestDeltaUtilizationFirstCallIsZeroBaseline(t *testing.T) {
	r := NewReader("h", "host", "host:9090")
	u := r.deltaUtilization(procfs.CPUStat{User: 100, Idle: 900})
	assert.Equal(t, 0.0, u)
}

func TestDeltaUtilizationComputesFromDelta(t *testing.T) {
	r := NewReader("h", "host", "host:9090")
	r.deltaUtilization(procfs.CPUStat{User: 100, Idle: 900})
	u := r.deltaUtilization(procfs.CPUStat{User: 200, Idle: 950})
	// total diff = 150, idle diff = 50, active diff = 100 -> 66.67%
	assert.InDelta(t, 66.67, u, 0.1)
}

func TestApplyContainerTruncationPrefersCpuset(t *testing.T) {
	snap := domain.CPUSnapshot{
		TotalCores:   8,
		TotalThreads: 16,
		PerCore: []domain.CoreUtilization{
			{CoreID: 0}, {CoreID: 1}, {CoreID: 2}, {CoreID: 3},
			{CoreID: 4}, {CoreID: 5}, {CoreID: 6}, {CoreID: 7},
		},
	}
	info := domain.ContainerInfo{IsContainer: true, CpusetCPUs: []int{0, 1, 2}, EffectiveCPUCount: 3}
	applyContainerTruncation(&snap, info)

	assert.Equal(t, 3, snap.TotalCores)
	assert.Len(t, snap.PerCore, 3)
	for _, c := range snap.PerCore {
		assert.Less(t, c.CoreID, 3)
	}
}

func TestApplyContainerTruncationFallsBackToFirstN(t *testing.T) {
	snap := domain.CPUSnapshot{
		TotalCores:   4,
		TotalThreads: 8,
		PerCore: []domain.CoreUtilization{
			{CoreID: 0}, {CoreID: 1}, {CoreID: 2}, {CoreID: 3},
		},
	}
	info := domain.ContainerInfo{IsContainer: true, EffectiveCPUCount: 2}
	applyContainerTruncation(&snap, info)

	assert.Equal(t, 2, snap.TotalCores)
	assert.Len(t, snap.PerCore, 2)
}
