//go:build darwin

package cmd

import (
	"github.com/cskr/pubsub"

	"github.com/all-smi-go/agent/daemon/device/applesilicon"
	"github.com/all-smi-go/agent/daemon/host/chassis"
	"github.com/all-smi-go/agent/daemon/host/cpu"
	"github.com/all-smi-go/agent/daemon/host/memory"
	"github.com/all-smi-go/agent/daemon/host/storage"
)

// platformReaders assembles macOS's device and host readers. Apple Silicon's
// GPU/ANE/thermal/power figures all come from one powermetrics collector
// singleton, which is why the applesilicon, cpu, and chassis readers here
// all take the same hub: a single "first sample received" event fans out to
// all three. gpuPower is unused on Darwin — powermetrics reports chassis
// power directly, so there is no cyclic-ownership problem to solve here.
func platformReaders(id identity, hub *pubsub.PubSub, gpuPower *chassis.GPUPowerCache) platformBundle {
	devices := commonDeviceReaders(id, hub)
	devices = append(devices, applesilicon.NewReader(id.hostID, id.hostname, id.instance, hub))

	return platformBundle{
		Devices: devices,
		CPU:     cpu.NewReader(id.hostID, id.hostname, id.instance, hub),
		Memory:  memory.NewReader(id.hostID, id.hostname, id.instance),
		Storage: storage.NewReader(id.hostID, id.hostname, id.instance),
		Chassis: chassis.NewReader(id.hostID, id.hostname, id.instance, hub),
	}
}
