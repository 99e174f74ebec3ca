package container

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCpusetRange(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int
		ok       bool
	}{
		{"single cpu", "0", []int{0}, true},
		{"range", "0-3", []int{0, 1, 2, 3}, true},
		{"list", "0,2,4", []int{0, 2, 4}, true},
		{"mixed range and list", "0-2,5,7-8", []int{0, 1, 2, 5, 7, 8}, true},
		{"empty", "", nil, false},
		{"invalid", "invalid", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCpusetRange(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestCalculateEffectiveCPUs(t *testing.T) {
	hostCount := float64(runtime.NumCPU())

	t.Run("no limits defaults to host count", func(t *testing.T) {
		assert.Equal(t, hostCount, calculateEffectiveCPUs(nil, nil, nil))
	})

	t.Run("quota limit 2 cpus", func(t *testing.T) {
		quota, period := int64(200000), int64(100000)
		assert.Equal(t, 2.0, calculateEffectiveCPUs(&quota, &period, nil))
	})

	t.Run("quota limit half a cpu", func(t *testing.T) {
		quota, period := int64(50000), int64(100000)
		assert.Equal(t, 0.5, calculateEffectiveCPUs(&quota, &period, nil))
	})

	t.Run("cpuset limit only", func(t *testing.T) {
		cpuset := []int{0, 1, 2, 3}
		got := calculateEffectiveCPUs(nil, nil, cpuset)
		if hostCount < 4 {
			assert.Equal(t, hostCount, got)
		} else {
			assert.Equal(t, 4.0, got)
		}
	})

	t.Run("quota more restrictive than cpuset", func(t *testing.T) {
		quota, period := int64(100000), int64(100000)
		cpuset := []int{0, 1, 2, 3}
		assert.Equal(t, 1.0, calculateEffectiveCPUs(&quota, &period, cpuset))
	})

	t.Run("cpuset more restrictive than quota", func(t *testing.T) {
		quota, period := int64(300000), int64(100000)
		cpuset := []int{0, 1}
		assert.Equal(t, 2.0, calculateEffectiveCPUs(&quota, &period, cpuset))
	})
}
