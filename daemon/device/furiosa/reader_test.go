package furiosa

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "devices": [
    {
      "name": "FuriosaAI Warboy RNGD",
      "uuid": "furiosa-uuid-0",
      "firmware_version": "2.0.1",
      "utilization": 55.0,
      "computation_utilization": 60.0,
      "copy_utilization": 12.0,
      "running": true,
      "temperature_celsius": 58.0,
      "power_consumption_watts": 45.0,
      "frequency_mhz": 1000,
      "memory_used_bytes": 4294967296,
      "memory_total_bytes": 17179869184
    }
  ]
}`

func TestResponseUnmarshalsExpectedFields(t *testing.T) {
	var resp response
	require.NoError(t, json.Unmarshal([]byte(sampleJSON), &resp))
	require.Len(t, resp.Devices, 1)
	d := resp.Devices[0]
	assert.Equal(t, "FuriosaAI Warboy RNGD", d.Name)
	assert.True(t, d.Running)
	assert.Equal(t, uint32(1000), d.FrequencyMHz)
}
