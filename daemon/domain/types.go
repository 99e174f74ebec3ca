// Package domain holds the device-neutral data model shared by every
// vendor reader, the exporter, and the fleet aggregator. All types here are
// plain value records: ownership is by-value and flows from readers to
// exporters, never the other way.
package domain

import "time"

// DeviceType disambiguates an accelerator snapshot's broad class.
type DeviceType string

const (
	DeviceTypeGPU DeviceType = "GPU"
	DeviceTypeNPU DeviceType = "NPU"
)

// DeviceSnapshot is a single accelerator reading (GPU or NPU).
type DeviceSnapshot struct {
	UUID     string     // stable per boot
	Name     string     // human-friendly
	Type     DeviceType
	HostID   string
	Hostname string
	Instance string
	Time     time.Time

	UtilizationPercent float64 // [0,100]
	UsedMemoryBytes    uint64
	TotalMemoryBytes   uint64
	TemperatureC       float64
	PowerWatts         float64
	FrequencyMHz       uint32

	ANEUtilizationMW      *float64 // Apple, milliwatts
	DLAUtilizationPercent *float64 // Jetson
	TensorCoreUtilization *float64 // TPU
	GPUCoreCount          *uint32

	// Detail is a free-form mapping of vendor-specific key->string fields.
	// Reader adapters decide the key namespace; exporters project chosen
	// keys into labels or numeric metrics.
	Detail map[string]string
}

// CoreType classifies a logical CPU core.
type CoreType string

const (
	CoreTypePerformance CoreType = "Performance"
	CoreTypeEfficiency  CoreType = "Efficiency"
	CoreTypeStandard    CoreType = "Standard"
)

// CorePlatform identifies the broad CPU vendor/architecture family.
type CorePlatform string

const (
	PlatformIntel        CorePlatform = "Intel"
	PlatformAMD          CorePlatform = "Amd"
	PlatformAppleSilicon CorePlatform = "AppleSilicon"
	PlatformArm          CorePlatform = "Arm"
	PlatformOther        CorePlatform = "Other"
)

// CoreUtilization is a single logical core's instantaneous reading.
type CoreUtilization struct {
	CoreID             int
	Type               CoreType
	UtilizationPercent float64
}

// CPUSocketInfo is per-socket static and live data.
type CPUSocketInfo struct {
	SocketID     int
	Utilization  float64
	Cores        int
	Threads      int
	TemperatureC *float64
	FrequencyMHz uint32
}

// AppleSiliconCPUInfo carries the Apple-Silicon-only sub-record.
type AppleSiliconCPUInfo struct {
	PCoreCount            int
	ECoreCount            int
	GPUCoreCount          int
	PCoreUtilization      float64
	ECoreUtilization      float64
	ANEOpsPerSecond       *float64
	PClusterFrequencyMHz  *uint32
	EClusterFrequencyMHz  *uint32
	PCoreL2CacheMB        *uint32
	ECoreL2CacheMB        *uint32
}

// CPUSnapshot is one host's CPU reading.
type CPUSnapshot struct {
	HostID   string
	Hostname string
	Instance string
	Time     time.Time

	Model             string
	Architecture      string
	Platform          CorePlatform
	SocketCount       int
	TotalCores        int
	TotalThreads      int
	BaseFrequencyMHz  uint32
	MaxFrequencyMHz   uint32
	CacheSizeMB       uint32
	UtilizationPercent float64
	TemperatureC      *float64
	PowerWatts        *float64

	PerSocket        []CPUSocketInfo
	PerCore          []CoreUtilization
	AppleSiliconInfo *AppleSiliconCPUInfo
}

// MemorySnapshot is one host's RAM reading. Invariant: Used <= Total;
// Free + Used is approximately Total (slack allowed for buffers/cached on
// Linux). When the host has exceeded physical memory via swap, Used is
// clamped to Total and the excess is charged to Swap.
type MemorySnapshot struct {
	HostID   string
	Hostname string
	Instance string
	Time     time.Time

	TotalBytes     uint64
	UsedBytes      uint64
	AvailableBytes uint64
	FreeBytes      uint64
	BuffersBytes   uint64
	CachedBytes    uint64

	SwapTotalBytes uint64
	SwapUsedBytes  uint64
	SwapFreeBytes  uint64

	UtilizationPercent float64
}

// StorageSnapshot is one mounted volume's reading. Invariant:
// AvailableBytes <= TotalBytes.
type StorageSnapshot struct {
	HostID   string
	Hostname string
	Instance string

	MountPoint     string
	TotalBytes     uint64
	AvailableBytes uint64
	Index          int // stable index among snapshots in one scan
}

// ThermalPressure is the Apple-Silicon thermal-pressure label set.
type ThermalPressure string

const (
	ThermalNominal  ThermalPressure = "Nominal"
	ThermalFair     ThermalPressure = "Fair"
	ThermalSerious  ThermalPressure = "Serious"
	ThermalCritical ThermalPressure = "Critical"
)

// PSUStatus is a power-supply health label.
type PSUStatus string

const (
	PSUOk       PSUStatus = "OK"
	PSUWarning  PSUStatus = "Warning"
	PSUCritical PSUStatus = "Critical"
	PSUFailed   PSUStatus = "Failed"
)

// FanReading is one chassis fan's current state.
type FanReading struct {
	Name       string
	CurrentRPM uint32
	MaxRPM     uint32
}

// PSUReading is one power supply's health state.
type PSUReading struct {
	Name   string
	Status PSUStatus
}

// ChassisSnapshot is the system-wide sensor reading.
type ChassisSnapshot struct {
	HostID   string
	Hostname string
	Instance string

	TotalPowerWatts    *float64
	InletTemperatureC  *float64
	OutletTemperatureC *float64
	ThermalPressure    *ThermalPressure
	Fans               []FanReading
	PSUs               []PSUReading
	Detail             map[string]string
}

// ProcessState is the single-letter process state code.
type ProcessState string

const (
	StateRunning  ProcessState = "R"
	StateSleeping ProcessState = "S"
	StateDiskWait ProcessState = "D"
	StateStopped  ProcessState = "T"
	StateZombie   ProcessState = "Z"
	StateDead     ProcessState = "X"
	StateIdle     ProcessState = "I"
	StateUnknown  ProcessState = "?"
)

// ProcessSnapshot is a GPU-attributed process reading.
type ProcessSnapshot struct {
	DeviceID   int
	DeviceUUID string
	PID        int
	PPID       int
	Name       string

	UsedGPUMemoryBytes uint64
	CPUPercent         float64
	MemoryPercent      float64
	RSSBytes           uint64
	VMSBytes           uint64
	User               string
	State              ProcessState
	StartTime          string
	CPUTimeSeconds     uint64
	Command            string
	Threads            int
	UsesGPU            bool
	Priority           int
	NiceValue          int
	GPUUtilization     float64
}
