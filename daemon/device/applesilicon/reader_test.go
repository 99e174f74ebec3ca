//go:build darwin

package applesilicon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotDevicesWithoutCollectorSampleIsZeroNotError(t *testing.T) {
	r := NewReader("host-1", "box", "box:9090", nil)
	snapshots := r.SnapshotDevices(context.Background())
	require.Len(t, snapshots, 1)
	assert.Equal(t, "Apple Silicon GPU", snapshots[0].Name)
	require.NotNil(t, snapshots[0].ANEUtilizationMW)
}
