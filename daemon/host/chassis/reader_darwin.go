//go:build darwin

package chassis

import (
	"context"

	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/all-smi-go/agent/daemon/powermetrics"
	"github.com/cskr/pubsub"
)

// Reader implements domain.ChassisReader on Apple Silicon by aggregating
// CPU+GPU+ANE power and thermal pressure from the shared powermetrics
// collector, per spec.md §4.3 "Chassis": "on Apple Silicon, aggregate
// CPU+GPU+ANE power and thermal pressure".
type Reader struct {
	hostID, hostname, instance string
	hub                        *pubsub.PubSub
}

// NewReader constructs a macOS chassis reader. hub may be nil.
func NewReader(hostID, hostname, instance string, hub *pubsub.PubSub) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance, hub: hub}
}

func (r *Reader) ReaderName() string { return "chassis-darwin" }

func (r *Reader) SnapshotChassis(ctx context.Context) (domain.ChassisSnapshot, error) {
	snap := domain.ChassisSnapshot{
		HostID:   r.hostID,
		Hostname: r.hostname,
		Instance: r.instance,
		Detail:   map[string]string{},
	}

	dc := powermetrics.Get(ctx, int(powermetrics.DefaultInterval.Milliseconds()), r.hub)
	if dc == nil {
		return snap, nil
	}
	sample, ok := dc.GetLatestData()
	if !ok {
		return snap, nil
	}

	watts := sample.CombinedPowerMW / 1000
	snap.TotalPowerWatts = &watts
	if sample.ThermalPressure != "" {
		pressure := mapThermalPressure(sample.ThermalPressure)
		snap.ThermalPressure = &pressure
	}

	return snap, nil
}

func mapThermalPressure(raw string) domain.ThermalPressure {
	switch raw {
	case "Nominal":
		return domain.ThermalNominal
	case "Fair", "Moderate":
		return domain.ThermalFair
	case "Serious", "Heavy":
		return domain.ThermalSerious
	case "Critical":
		return domain.ThermalCritical
	default:
		return domain.ThermalNominal
	}
}
