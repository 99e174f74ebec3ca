package powermetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinimalSample(t *testing.T) {
	s, err := Parse("GPU HW active frequency: 1000 MHz\nGPU HW active residency: 20.0%")
	require.NoError(t, err)

	assert.Equal(t, uint32(1000), s.GPUFrequencyMHz)
	assert.Equal(t, 20.0, s.GPUActiveResidencyPercent)
	assert.Equal(t, 0.0, s.EClusterResidencyPercent)
	assert.Equal(t, 0.0, s.PClusterResidencyPercent)
	assert.Equal(t, uint32(0), s.EClusterFrequencyMHz)
	assert.Equal(t, uint32(0), s.PClusterFrequencyMHz)
}

func TestParseFullSample(t *testing.T) {
	block := `E-Cluster HW active residency: 30.0%
P-Cluster HW active residency: 70.0%
E-Cluster HW active frequency: 1000 MHz
P-Cluster HW active frequency: 3000 MHz
CPU Power: 500 mW
GPU Power: 200 mW
ANE Power: 50 mW
Current pressure level: Nominal`

	s, err := Parse(block)
	require.NoError(t, err)

	assert.InDelta(t, 58.0, s.CPUUtilizationPercent(), 0.01)
	assert.Equal(t, 750.0, s.CombinedPowerMW)
	assert.Equal(t, "Nominal", s.ThermalPressure)
}

func TestParseIgnoresBlankAndMalformedLines(t *testing.T) {
	s, err := Parse("\n\nnonsense line with no colon\nGPU Power: 10 mW\n")
	require.NoError(t, err)
	assert.Equal(t, 10.0, s.GPUPowerMW)
}
