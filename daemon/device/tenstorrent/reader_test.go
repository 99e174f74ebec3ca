package tenstorrent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "driver_version": "1.30",
  "devices": [
    {
      "name": "Tenstorrent Wormhole n150s",
      "uuid": "tt-uuid-0",
      "board_serial": "TT-0001",
      "firmware_version": "18.5",
      "soc_utilization": 42.5,
      "asic_temperature": 65.0,
      "vreg_temperature": 58.0,
      "inlet_temperature": 30.0,
      "aiclk_mhz": 1200,
      "axiclk_mhz": 900,
      "arcclk_mhz": 600,
      "voltage_volts": 0.9,
      "current_amperes": 40.0,
      "memory_used_bytes": 1073741824,
      "memory_total_bytes": 34359738368
    }
  ]
}`

func TestResponseUnmarshalsExpectedFields(t *testing.T) {
	var resp response
	require.NoError(t, json.Unmarshal([]byte(sampleJSON), &resp))
	require.Len(t, resp.Devices, 1)
	d := resp.Devices[0]
	assert.Equal(t, "Tenstorrent Wormhole n150s", d.Name)
	assert.Equal(t, uint32(1200), d.AIClockMHz)
	assert.Equal(t, "1.30", resp.DriverVersion)
}
