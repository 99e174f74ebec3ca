package processjoin

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/all-smi-go/agent/daemon/domain"
)

func TestLookupJoinsSelfProcess(t *testing.T) {
	snap, ok := Lookup(domain.ProcessSnapshot{PID: os.Getpid(), UsesGPU: true, UsedGPUMemoryBytes: 1024})
	if !ok {
		t.Skip("no /proc on this platform")
	}
	assert.NotEmpty(t, snap.Command)
	assert.NotEmpty(t, snap.State)
	assert.True(t, snap.UsesGPU)
	assert.Equal(t, uint64(1024), snap.UsedGPUMemoryBytes)
}

func TestLookupReturnsFalseForNonexistentPID(t *testing.T) {
	_, ok := Lookup(domain.ProcessSnapshot{PID: 1 << 30})
	assert.False(t, ok)
}
