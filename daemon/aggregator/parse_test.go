package aggregator

import (
	"testing"

	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/stretchr/testify/assert"
)

const sampleBody = `# HELP all_smi_gpu_utilization Device utilization percentage
# TYPE all_smi_gpu_utilization gauge
all_smi_gpu_utilization{instance="10.0.0.5:9100",hostname="gpu-1",host_id="h1",index="0",uuid="GPU-abc",gpu="NVIDIA A100"} 42
all_smi_gpu_memory_used_bytes{instance="10.0.0.5:9100",hostname="gpu-1",host_id="h1",index="0",uuid="GPU-abc",gpu="NVIDIA A100"} 1000
all_smi_gpu_memory_total_bytes{instance="10.0.0.5:9100",hostname="gpu-1",host_id="h1",index="0",uuid="GPU-abc",gpu="NVIDIA A100"} 2000
all_smi_cpu_utilization{instance="10.0.0.5:9100",hostname="gpu-1",host_id="h1",model="EPYC"} 12.5
all_smi_cpu_core_count{instance="10.0.0.5:9100",hostname="gpu-1",host_id="h1",model="EPYC"} 64
all_smi_cpu_core_utilization{instance="10.0.0.5:9100",hostname="gpu-1",host_id="h1",model="EPYC",core="0",core_type="Standard"} 99
all_smi_memory_total_bytes{instance="10.0.0.5:9100",hostname="gpu-1",host_id="h1"} 500000
all_smi_memory_used_bytes{instance="10.0.0.5:9100",hostname="gpu-1",host_id="h1"} 250000
all_smi_disk_total_bytes{instance="10.0.0.5:9100",hostname="gpu-1",host_id="h1",index="0",mount_point="/"} 1000000
all_smi_disk_available_bytes{instance="10.0.0.5:9100",hostname="gpu-1",host_id="h1",index="0",mount_point="/"} 400000
this is not a valid metric line
all_smi_gpu_utilization{malformed 1
`

func TestParseExpositionRehydratesAllClasses(t *testing.T) {
	parsed := ParseExposition(sampleBody, "peer-host-id")

	assert.Len(t, parsed.GPUs, 1)
	assert.Equal(t, "GPU-abc", parsed.GPUs[0].UUID)
	assert.Equal(t, "peer-host-id", parsed.GPUs[0].HostID)
	assert.Equal(t, 42.0, parsed.GPUs[0].UtilizationPercent)
	assert.Equal(t, uint64(1000), parsed.GPUs[0].UsedMemoryBytes)
	assert.Equal(t, domain.DeviceTypeGPU, parsed.GPUs[0].Type)

	assert.Len(t, parsed.CPUs, 1)
	assert.Equal(t, "peer-host-id", parsed.CPUs[0].HostID)
	assert.Equal(t, 12.5, parsed.CPUs[0].UtilizationPercent)
	assert.Equal(t, 64, parsed.CPUs[0].TotalCores)

	assert.Len(t, parsed.Memory, 1)
	assert.Equal(t, uint64(500000), parsed.Memory[0].TotalBytes)
	assert.Equal(t, uint64(250000), parsed.Memory[0].UsedBytes)

	assert.Len(t, parsed.Storage, 1)
	assert.Equal(t, "/", parsed.Storage[0].MountPoint)
	assert.Equal(t, uint64(1000000), parsed.Storage[0].TotalBytes)
}

func TestParseExpositionSkipsMalformedLinesWithoutAborting(t *testing.T) {
	parsed := ParseExposition("garbage line with no value\nall_smi_memory_total_bytes{instance=\"x\"} 10\n", "h1")
	assert.Len(t, parsed.Memory, 1)
	assert.Equal(t, uint64(10), parsed.Memory[0].TotalBytes)
}

func TestParseOneLineHandlesEscapedLabelValues(t *testing.T) {
	pl, ok := parseOneLine(`all_smi_gpu_utilization{gpu="Quote \" Name"} 1`)
	assert.True(t, ok)
	assert.Equal(t, `Quote " Name`, pl.labels["gpu"])
}

func TestParseOneLineRejectsMissingValue(t *testing.T) {
	_, ok := parseOneLine(`all_smi_gpu_utilization{gpu="x"}`)
	assert.False(t, ok)
}

func TestParseOneLineWithoutLabels(t *testing.T) {
	pl, ok := parseOneLine("all_smi_cpu_utilization 50")
	assert.True(t, ok)
	assert.Equal(t, "all_smi_cpu_utilization", pl.name)
	assert.Equal(t, 50.0, pl.value)
}

func TestSplitLabelPairsIgnoresCommaInsideQuotes(t *testing.T) {
	pairs := splitLabelPairs(`a="x,y",b="z"`)
	assert.Equal(t, []string{`a="x,y"`, `b="z"`}, pairs)
}
