//go:build windows

package amdwmi

import (
	"testing"

	"github.com/all-smi-go/agent/daemon/wmi"
	"github.com/stretchr/testify/assert"
)

func TestIsAMD(t *testing.T) {
	assert.True(t, isAMD("AMD Radeon RX 7900 XTX"))
	assert.True(t, isAMD("ATI Mobility Radeon"))
	assert.False(t, isAMD("NVIDIA GeForce RTX 4090"))
}

func TestUint64FieldHandlesMissingAndTypedValues(t *testing.T) {
	row := wmi.Row{"AdapterRAM": uint32(1024)}
	assert.Equal(t, uint64(1024), uint64Field(row, "AdapterRAM"))
	assert.Equal(t, uint64(0), uint64Field(row, "Missing"))
}

func TestStringFieldHandlesMissing(t *testing.T) {
	row := wmi.Row{"Name": "AMD Radeon Pro"}
	assert.Equal(t, "AMD Radeon Pro", stringField(row, "Name"))
	assert.Equal(t, "", stringField(row, "Missing"))
}
