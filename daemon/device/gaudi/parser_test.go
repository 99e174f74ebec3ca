package gaudi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedTwoDeviceSample = "0, 01P4-HL3090A0-18-U4V193-22-07-00, HL-325L, 1.22.1-97ec1a4, 131072 MiB, 672 MiB, 130400 MiB, 226 W, 850 W, 36 C, 0 %\n" +
	"1, 01P4-HL3090A0-18-U4V298-03-04-04, HL-325L, 1.22.1-97ec1a4, 131072 MiB, 672 MiB, 130400 MiB, 230 W, 850 W, 39 C, 0 %"

func TestParseHLSMIOutputTwoDevices(t *testing.T) {
	data, err := ParseHLSMIOutput(seedTwoDeviceSample)
	require.NoError(t, err)
	require.Len(t, data.Devices, 2)

	assert.Equal(t, uint32(36), data.Devices[0].TemperatureC)
	assert.Equal(t, 230.0, data.Devices[1].PowerDrawW)
	assert.Equal(t, "1.22.1", data.Devices[0].DriverVersion)
	assert.Equal(t, "Intel Gaudi 3 PCIe LP", MapDeviceName(data.Devices[0].Name))
}

func TestParseHLSMIOutputSkipsMalformedLines(t *testing.T) {
	data, err := ParseHLSMIOutput("not,enough,fields\n" + seedTwoDeviceSample)
	require.NoError(t, err)
	assert.Len(t, data.Devices, 2)
}

func TestMapDeviceName(t *testing.T) {
	cases := map[string]string{
		"HL-100":  "Intel Gaudi",
		"HL-200":  "Intel Gaudi 2 Mezzanine",
		"HL-205":  "Intel Gaudi 2 PCIe",
		"HL-225":  "Intel Gaudi 2 OAM",
		"HL-210":  "Intel Gaudi 2",
		"HL-325L": "Intel Gaudi 3 PCIe LP",
		"HL-325":  "Intel Gaudi 3 PCIe",
		"HL-328":  "Intel Gaudi 3 OAM",
		"HL-338":  "Intel Gaudi 3 UBB",
		"HL-388":  "Intel Gaudi 3 HLS",
		"HL-399":  "Intel Gaudi 3",
		"HL-400":  "Intel Gaudi 4",
		"HL-500":  "Intel Gaudi 5",
		"XYZ-1":   "Intel XYZ-1",
	}
	for in, want := range cases {
		assert.Equal(t, want, MapDeviceName(in), "input %q", in)
	}
}

func TestParseMemoryMiB(t *testing.T) {
	v, err := parseMemoryMiB("131072 MiB")
	require.NoError(t, err)
	assert.Equal(t, uint64(131072), v)
}

func TestParsePower(t *testing.T) {
	v, err := parsePower("226 W")
	require.NoError(t, err)
	assert.Equal(t, 226.0, v)
}

func TestParseTemperature(t *testing.T) {
	v, err := parseTemperature("36 C")
	require.NoError(t, err)
	assert.Equal(t, uint32(36), v)
}

func TestParseUtilization(t *testing.T) {
	v, err := parseUtilization("0 %")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestStripDriverRevision(t *testing.T) {
	assert.Equal(t, "1.22.1", StripDriverRevision("1.22.1-97ec1a4"))
	assert.Equal(t, "1.22.1-rel", StripDriverRevision("1.22.1-rel"), "non-hex suffix untouched")
	assert.Equal(t, "1.22.1-ab12", StripDriverRevision("1.22.1-ab12"), "suffix shorter than 6 hex chars untouched")
	assert.Equal(t, "noversion", StripDriverRevision("noversion"))
}
