//go:build darwin

// Package applesilicon implements the Apple-Silicon GPU/ANE adapter on top
// of the shared daemon/powermetrics collector (the same process-wide child
// daemon/host/cpu and daemon/host/chassis's darwin readers draw from, per
// spec.md §9's "process-wide singletons" design note).
package applesilicon

import (
	"context"
	"strconv"
	"time"

	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/all-smi-go/agent/daemon/powermetrics"
	"github.com/cskr/pubsub"
)

// Reader implements domain.DeviceReader for the integrated GPU and Apple
// Neural Engine on Apple Silicon.
type Reader struct {
	hostID, hostname, instance string
	hub                        *pubsub.PubSub
}

// NewReader constructs an Apple-Silicon GPU/ANE reader. hub may be nil.
func NewReader(hostID, hostname, instance string, hub *pubsub.PubSub) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance, hub: hub}
}

func (r *Reader) ReaderName() string { return "apple-silicon" }

// SnapshotDevices reports one device: the SoC's integrated GPU, annotated
// with ANE power draw since Apple Silicon exposes no separate ANE "device".
// A collector that has not yet produced a sample yields zero values rather
// than an error.
func (r *Reader) SnapshotDevices(ctx context.Context) []domain.DeviceSnapshot {
	dc := powermetrics.Get(ctx, int(powermetrics.DefaultInterval.Milliseconds()), r.hub)
	var sample powermetrics.Sample
	if dc != nil {
		sample, _ = dc.GetLatestData()
	}

	aneWatts := sample.ANEPowerMW
	return []domain.DeviceSnapshot{{
		UUID:               "apple-silicon-gpu",
		Name:               "Apple Silicon GPU",
		Type:               domain.DeviceTypeGPU,
		HostID:             r.hostID,
		Hostname:           r.hostname,
		Instance:           r.instance,
		Time:               time.Now(),
		UtilizationPercent: sample.GPUActiveResidencyPercent,
		FrequencyMHz:       sample.GPUFrequencyMHz,
		PowerWatts:         sample.GPUPowerMW / 1000,
		ANEUtilizationMW:   &aneWatts,
		Detail: map[string]string{
			"combined_power_mw": strconv.FormatFloat(sample.CombinedPowerMW, 'f', 1, 64),
			"thermal_pressure":  sample.ThermalPressure,
		},
	}}
}
