//go:build windows

package cmd

import (
	"github.com/cskr/pubsub"

	"github.com/all-smi-go/agent/daemon/device/amdwmi"
	"github.com/all-smi-go/agent/daemon/host/chassis"
	"github.com/all-smi-go/agent/daemon/host/cpu"
)

// platformReaders assembles Windows's device and host readers. Only a CPU
// reader exists on this platform so far: memory, storage, and chassis would
// each need their own WMI/PDH query surface that has not been built, a
// documented scope gap rather than a silent omission. gpuPower and hub are
// accepted for signature parity with the other platforms but unused here.
func platformReaders(id identity, hub *pubsub.PubSub, gpuPower *chassis.GPUPowerCache) platformBundle {
	devices := commonDeviceReaders(id, hub)
	devices = append(devices, amdwmi.NewReader(id.hostID, id.hostname, id.instance))

	return platformBundle{
		Devices: devices,
		CPU:     cpu.NewReader(id.hostID, id.hostname, id.instance),
	}
}
