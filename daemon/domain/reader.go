package domain

import "context"

// DeviceReader is the uniform contract every vendor/platform back-end
// implements. Implementations must be safe to instantiate on any platform —
// hardware absence is reported as an empty snapshot, never an error — and
// must be safe for concurrent use, since scrape handlers may call a reader
// from multiple goroutines at once.
type DeviceReader interface {
	// SnapshotDevices returns a fresh snapshot of every device this reader
	// is responsible for. It never fails: an empty slice means "nothing to
	// report". Callers must not assume any caching between calls unless the
	// concrete reader documents otherwise.
	SnapshotDevices(ctx context.Context) []DeviceSnapshot
}

// ProcessSnapshotter is the optional capability a DeviceReader may also
// implement to attribute running processes to the devices it reports.
type ProcessSnapshotter interface {
	SnapshotProcesses(ctx context.Context) []ProcessSnapshot
}

// Name identifies a reader for logging and the NPU vendor-dispatch table.
type Name interface {
	ReaderName() string
}

// CPUReader reports the host's CPU snapshot. Implementations compute
// utilization as a delta between consecutive calls; the first call on a
// fresh instance returns a zero-utilization baseline rather than an error.
type CPUReader interface {
	SnapshotCPU(ctx context.Context) (CPUSnapshot, error)
}

// MemoryReader reports the host's RAM/swap snapshot.
type MemoryReader interface {
	SnapshotMemory(ctx context.Context) (MemorySnapshot, error)
}

// StorageReader enumerates mounted volumes.
type StorageReader interface {
	SnapshotStorage(ctx context.Context) ([]StorageSnapshot, error)
}

// ChassisReader reports system-wide sensors (fans, PSUs, thermal pressure).
type ChassisReader interface {
	SnapshotChassis(ctx context.Context) (ChassisSnapshot, error)
}
