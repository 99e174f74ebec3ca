package cmd

import (
	"time"

	"github.com/cskr/pubsub"

	"github.com/all-smi-go/agent/daemon/device/furiosa"
	"github.com/all-smi-go/agent/daemon/device/gaudi"
	"github.com/all-smi-go/agent/daemon/device/nvidia"
	"github.com/all-smi-go/agent/daemon/device/rebellions"
	"github.com/all-smi-go/agent/daemon/device/tenstorrent"
	"github.com/all-smi-go/agent/daemon/domain"
)

// platformBundle is what each OS-specific wiring file assembles: the full
// set of device and host readers active on that platform. Any field may be
// left nil, meaning that host class has no back-end on this OS.
type platformBundle struct {
	Devices []domain.DeviceReader
	CPU     domain.CPUReader
	Memory  domain.MemoryReader
	Storage domain.StorageReader
	Chassis domain.ChassisReader
}

// hlSMIInterval is the `-l <seconds>` sampling period handed to the Gaudi
// background collector; hl-smi is relatively expensive to invoke, so this
// mirrors the long-running-collector interval spec.md §4.4 calls for.
const hlSMIInterval = 5 * time.Second

// commonDeviceReaders builds the device readers with no //go:build tag: each
// shells out to a vendor CLI that is either present or absent regardless of
// host OS, so spec.md §4.1's reader-selection rule applies identically on
// every platform.
func commonDeviceReaders(id identity, hub *pubsub.PubSub) []domain.DeviceReader {
	return []domain.DeviceReader{
		nvidia.NewReader(id.hostID, id.hostname, id.instance),
		gaudi.NewReader(id.hostID, id.hostname, id.instance, hlSMIInterval, hub),
		furiosa.NewReader(id.hostID, id.hostname, id.instance),
		rebellions.NewReader(id.hostID, id.hostname, id.instance),
		tenstorrent.NewReader(id.hostID, id.hostname, id.instance),
	}
}
