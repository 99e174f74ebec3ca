//go:build linux

package cmd

import (
	"github.com/cskr/pubsub"

	"github.com/all-smi-go/agent/daemon/device/jetson"
	"github.com/all-smi-go/agent/daemon/device/tpu"
	"github.com/all-smi-go/agent/daemon/host/chassis"
	"github.com/all-smi-go/agent/daemon/host/cpu"
	"github.com/all-smi-go/agent/daemon/host/memory"
	"github.com/all-smi-go/agent/daemon/host/storage"
)

// platformReaders assembles Linux's device and host readers. Linux has the
// fullest reader set of any platform: procfs/sysfs give host CPU, memory,
// and storage directly, and the chassis reader shares gpuPower with
// exporter.Scraper to learn the fleet's aggregate GPU draw without a direct
// dependency on the device layer, per spec.md §9.
func platformReaders(id identity, hub *pubsub.PubSub, gpuPower *chassis.GPUPowerCache) platformBundle {
	devices := commonDeviceReaders(id, hub)
	devices = append(devices,
		jetson.NewReader(id.hostID, id.hostname, id.instance),
		tpu.NewReader(id.hostID, id.hostname, id.instance),
	)

	return platformBundle{
		Devices: devices,
		CPU:     cpu.NewReader(id.hostID, id.hostname, id.instance),
		Memory:  memory.NewReader(id.hostID, id.hostname, id.instance),
		Storage: storage.NewReader(id.hostID, id.hostname, id.instance),
		Chassis: chassis.NewReader(id.hostID, id.hostname, id.instance, gpuPower),
	}
}
