//go:build linux

package tpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsKnownTPUDeviceID(t *testing.T) {
	assert.True(t, isKnownTPUDeviceID("0x0050"))
	assert.True(t, isKnownTPUDeviceID("006f"))
	assert.False(t, isKnownTPUDeviceID("ffff"))
}

func TestScanSysfsOnMachineWithoutTPUsIsEmpty(t *testing.T) {
	devices := scanSysfs()
	assert.Empty(t, devices)
}
