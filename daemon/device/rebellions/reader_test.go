package rebellions

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "KMD_version": "1.2.3",
  "devices": [
    {
      "npu": "npu0",
      "name": "ATOM+",
      "sid": "SN12345",
      "uuid": "rbln-uuid-0",
      "device": "/dev/rbln0",
      "status": "normal",
      "fw_ver": "2.1.0",
      "pci": {"dev": "0000:01:00.0", "bus_id": "0000:01:00.0", "numa_node": "0", "link_speed": "16GT/s", "link_width": "x16"},
      "temperature": "45.0C",
      "card_power": "35.2W",
      "pstate": "P0",
      "memory": {"used": "2048MB", "total": "16384MB"},
      "util": "12.5%",
      "board_info": "RBLN-CA12",
      "location": 0
    }
  ],
  "contexts": []
}`

func TestResponseUnmarshalsExpectedFields(t *testing.T) {
	var resp response
	require.NoError(t, json.Unmarshal([]byte(sampleJSON), &resp))
	require.Len(t, resp.Devices, 1)
	d := resp.Devices[0]
	assert.Equal(t, "ATOM+", d.Name)
	assert.Equal(t, "rbln-uuid-0", d.UUID)
	assert.Equal(t, "1.2.3", resp.KMDVersion)
}

func TestParseMemoryMiB(t *testing.T) {
	assert.Equal(t, uint64(2048), parseMemoryMiB("2048MB"))
	assert.Equal(t, uint64(16384), parseMemoryMiB("16GB"))
}

func TestParseNumericPrefix(t *testing.T) {
	assert.Equal(t, 45.0, parseCelsius("45.0C"))
	assert.Equal(t, 35.2, parseWatts("35.2W"))
	assert.Equal(t, 12.5, parsePercent("12.5%"))
}

func TestSplitNumericSuffix(t *testing.T) {
	n, u := splitNumericSuffix("45.0C")
	assert.Equal(t, "45.0", n)
	assert.Equal(t, "C", u)
}
