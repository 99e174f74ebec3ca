//go:build linux

package chassis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleSensorsOutput = `nct6798-isa-0a20
Adapter: ISA adapter
fan1:
  fan1_input: 1234.000
  fan1_min: 0.000
fan2:
  fan2_input: 987.000
`

func TestParseFanReadings(t *testing.T) {
	fans := parseFanReadings(sampleSensorsOutput)
	assert.Len(t, fans, 2)
	assert.Equal(t, uint32(1234), fans[0].CurrentRPM)
	assert.Equal(t, uint32(987), fans[1].CurrentRPM)
}

func TestParseFanReadingsEmptyOnNoFans(t *testing.T) {
	fans := parseFanReadings("nct6798-isa-0a20\nAdapter: ISA adapter\ntemp1:\n  temp1_input: 45.000\n")
	assert.Empty(t, fans)
}

func TestGPUPowerCache(t *testing.T) {
	c := &GPUPowerCache{}
	_, ok := c.Get()
	assert.False(t, ok)

	c.Set(123.4)
	watts, ok := c.Get()
	assert.True(t, ok)
	assert.Equal(t, 123.4, watts)
}
