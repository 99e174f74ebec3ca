package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommonDeviceReadersCoversEveryAlwaysOnVendor(t *testing.T) {
	id := identity{hostID: "h", hostname: "box", instance: "box:9100"}
	readers := commonDeviceReaders(id, nil)
	assert.Len(t, readers, 5)
}
