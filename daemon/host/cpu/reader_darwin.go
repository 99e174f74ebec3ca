//go:build darwin

package cpu

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/all-smi-go/agent/daemon/powermetrics"
	"github.com/cskr/pubsub"
)

// Reader implements domain.CPUReader on macOS using sysctl for static
// fields and the shared powermetrics collector for live cluster residency
// and frequency, per spec.md §4.3 "CPU-macOS".
type Reader struct {
	hostID, hostname, instance string
	hub                        *pubsub.PubSub
}

// NewReader constructs a macOS CPU reader. hub may be nil.
func NewReader(hostID, hostname, instance string, hub *pubsub.PubSub) *Reader {
	return &Reader{hostID: hostID, hostname: hostname, instance: instance, hub: hub}
}

func (r *Reader) ReaderName() string { return "cpu-darwin" }

// SnapshotCPU reports the weighted E/P-cluster utilization, per-cluster
// frequencies, and static model info. A collector that has not yet
// produced a sample reports zero utilization rather than an error.
func (r *Reader) SnapshotCPU(ctx context.Context) (domain.CPUSnapshot, error) {
	snap := domain.CPUSnapshot{
		HostID:       r.hostID,
		Hostname:     r.hostname,
		Instance:     r.instance,
		Architecture: "arm64",
		Platform:     domain.PlatformAppleSilicon,
	}

	snap.Model = sysctlString("machdep.cpu.brand_string")
	snap.SocketCount = 1
	snap.TotalCores = sysctlInt("hw.physicalcpu")
	snap.TotalThreads = sysctlInt("hw.logicalcpu")
	pCores := sysctlInt("hw.perflevel0.physicalcpu")
	eCores := sysctlInt("hw.perflevel1.physicalcpu")

	dc := powermetrics.Get(ctx, int(powermetrics.DefaultInterval.Milliseconds()), r.hub)
	var sample powermetrics.Sample
	if dc != nil {
		sample, _ = dc.GetLatestData()
	}

	snap.UtilizationPercent = sample.CPUUtilizationPercent()
	snap.BaseFrequencyMHz = sample.PClusterFrequencyMHz
	snap.MaxFrequencyMHz = sample.PClusterFrequencyMHz

	pFreq, eFreq := sample.PClusterFrequencyMHz, sample.EClusterFrequencyMHz
	snap.AppleSiliconInfo = &domain.AppleSiliconCPUInfo{
		PCoreCount:           pCores,
		ECoreCount:           eCores,
		PCoreUtilization:     sample.PClusterResidencyPercent,
		ECoreUtilization:     sample.EClusterResidencyPercent,
		PClusterFrequencyMHz: &pFreq,
		EClusterFrequencyMHz: &eFreq,
	}

	snap.PerSocket = []domain.CPUSocketInfo{{
		SocketID:     0,
		Utilization:  snap.UtilizationPercent,
		Cores:        snap.TotalCores,
		Threads:      snap.TotalThreads,
		FrequencyMHz: snap.BaseFrequencyMHz,
	}}

	return snap, nil
}

func sysctlString(name string) string {
	out, err := exec.Command("sysctl", "-n", name).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func sysctlInt(name string) int {
	v, err := strconv.Atoi(sysctlString(name))
	if err != nil {
		return 0
	}
	return v
}
