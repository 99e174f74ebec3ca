//go:build linux

package jetson

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeCapability(t *testing.T) {
	assert.Equal(t, "8.7", computeCapability("NVIDIA Jetson AGX Orin"))
	assert.Equal(t, "7.2", computeCapability("NVIDIA Jetson AGX Xavier"))
	assert.Equal(t, "5.3", computeCapability("NVIDIA Jetson TX2"))
	assert.Equal(t, "5.3", computeCapability("NVIDIA Jetson Nano"))
	assert.Equal(t, "", computeCapability("NVIDIA Jetson Unknown"))
}

func TestParseMeminfoField(t *testing.T) {
	assert.Equal(t, uint64(8052828), parseMeminfoField("MemTotal:       8052828 kB"))
	assert.Equal(t, uint64(0), parseMeminfoField("malformed"))
}

func TestReadOnMissingSysfsIsZeroNotError(t *testing.T) {
	s := Read()
	assert.GreaterOrEqual(t, s.UtilizationPercent, 0.0)
	assert.GreaterOrEqual(t, s.TemperatureC, 0.0)
}
