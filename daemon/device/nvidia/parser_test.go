package nvidia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "0, NVIDIA A100-SXM4-40GB, GPU-abc123, 535.104.05, 60, 250.00, 400.00, 42, 40960, 10240, 30720, 1400\n"

func TestParseCSV(t *testing.T) {
	samples, err := ParseCSV(sampleCSV)
	require.NoError(t, err)
	require.Len(t, samples, 1)

	s := samples[0]
	assert.Equal(t, 0, s.Index)
	assert.Equal(t, "NVIDIA A100-SXM4-40GB", s.Name)
	assert.Equal(t, "535.104.05", s.DriverVersion)
	assert.Equal(t, 60.0, s.TemperatureC)
	assert.Equal(t, 250.0, s.PowerDrawW)
	assert.Equal(t, uint64(40960), s.MemoryTotalMiB)
	assert.Equal(t, uint32(1400), s.GraphicsClockMHz)
}

func TestParseCSVHandlesNotSupported(t *testing.T) {
	line := "0, GPU-x, GPU-uuid, 1.0, [Not Supported], [Not Supported], [Not Supported], [Not Supported], 1024, 0, 1024, [Not Supported]"
	samples, err := ParseCSV(line)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 0.0, samples[0].TemperatureC)
	assert.Equal(t, uint32(0), samples[0].GraphicsClockMHz)
}

func TestParseCSVSkipsMalformedLines(t *testing.T) {
	samples, err := ParseCSV("too,few,fields\n" + sampleCSV)
	require.NoError(t, err)
	assert.Len(t, samples, 1)
}
