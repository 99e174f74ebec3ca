package exporter

import (
	"context"

	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/all-smi-go/agent/daemon/host/chassis"
	"github.com/all-smi-go/agent/daemon/logger"
)

// Scraper holds the process-start-probed set of active readers and renders
// one Prometheus text document per call to Render, per spec.md §4.1's
// selection rule ("the snapshot_devices result of the overall system is the
// concatenation of the active readers' outputs in that order").
type Scraper struct {
	deviceReaders []domain.DeviceReader
	cpuReader     domain.CPUReader
	memoryReader  domain.MemoryReader
	storageReader domain.StorageReader
	chassisReader domain.ChassisReader
	gpuPowerCache *chassis.GPUPowerCache
}

// NewScraper constructs a Scraper from the back-ends that detected their
// hardware at process start. Any reader may be nil, meaning that host class
// produced nothing on this platform. gpuPowerCache may be nil; when set, it
// receives the scrape's aggregate GPU power draw so a Linux chassis reader
// sharing the same cache can report it without depending on the GPU layer
// directly, per spec.md §9.
func NewScraper(deviceReaders []domain.DeviceReader, cpuReader domain.CPUReader, memoryReader domain.MemoryReader, storageReader domain.StorageReader, chassisReader domain.ChassisReader, gpuPowerCache *chassis.GPUPowerCache) *Scraper {
	return &Scraper{
		deviceReaders: deviceReaders,
		cpuReader:     cpuReader,
		memoryReader:  memoryReader,
		storageReader: storageReader,
		chassisReader: chassisReader,
		gpuPowerCache: gpuPowerCache,
	}
}

// Render collects one snapshot from every configured reader and returns the
// full Prometheus text exposition. A single reader's failure is logged and
// degrades that reader's section to empty; it never aborts the scrape.
func (s *Scraper) Render(ctx context.Context) string {
	b := NewBuilder()

	var devices []domain.DeviceSnapshot
	for _, r := range s.deviceReaders {
		devices = append(devices, r.SnapshotDevices(ctx)...)
	}
	WriteDeviceMetrics(b, devices)

	if s.gpuPowerCache != nil {
		var total float64
		for _, d := range devices {
			if d.Type == domain.DeviceTypeGPU {
				total += d.PowerWatts
			}
		}
		s.gpuPowerCache.Set(total)
	}

	if s.cpuReader != nil {
		snap, err := s.cpuReader.SnapshotCPU(ctx)
		if err != nil {
			logger.LogReaderError("cpu", err)
		} else {
			WriteCPUMetrics(b, snap)
		}
	}

	if s.memoryReader != nil {
		snap, err := s.memoryReader.SnapshotMemory(ctx)
		if err != nil {
			logger.LogReaderError("memory", err)
		} else {
			WriteMemoryMetrics(b, snap)
		}
	}

	if s.storageReader != nil {
		snaps, err := s.storageReader.SnapshotStorage(ctx)
		if err != nil {
			logger.LogReaderError("storage", err)
		} else {
			WriteStorageMetrics(b, snaps)
		}
	}

	if s.chassisReader != nil {
		snap, err := s.chassisReader.SnapshotChassis(ctx)
		if err != nil {
			logger.LogReaderError("chassis", err)
		} else {
			WriteChassisMetrics(b, snap)
		}
	}

	return b.String()
}

// DeviceCount calls every device reader again and returns how many devices
// they report now; it does not reuse the previous Render's snapshots.
// daemon/api passes the count to daemon/logger's scrape log line.
func (s *Scraper) DeviceCount(ctx context.Context) int {
	count := 0
	for _, r := range s.deviceReaders {
		count += len(r.SnapshotDevices(ctx))
	}
	return count
}
