package domain

// ContainerInfo describes the process-wide containerization state, detected
// once at startup and treated as immutable for a reader's life (usage fields
// may be re-read lazily — see container.RefreshUsage).
type ContainerInfo struct {
	IsContainer bool

	CPUQuota  *int64
	CPUPeriod *int64
	CPUShares *int64

	CpusetCPUs []int // ordered, deduplicated logical CPU ids

	MemoryLimitBytes *uint64
	MemoryUsageBytes *uint64

	// EffectiveCPUCount is min(quota/period, |cpuset|, host_cpu_count),
	// defaulting to the host's logical CPU count when no limit applies.
	EffectiveCPUCount float64
}
