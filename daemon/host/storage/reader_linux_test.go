//go:build linux

package storage

import "testing"

import "github.com/stretchr/testify/assert"

func TestIsExcludedPath(t *testing.T) {
	assert.True(t, isExcludedPath("/proc"))
	assert.True(t, isExcludedPath("/proc/1234"))
	assert.True(t, isExcludedPath("/var/lib/docker/overlay2/abc"))
	assert.False(t, isExcludedPath("/data"))
	assert.False(t, isExcludedPath("/home"))
}

func TestExcludedFSTypes(t *testing.T) {
	assert.True(t, excludedFSTypes["overlay"])
	assert.True(t, excludedFSTypes["tmpfs"])
	assert.False(t, excludedFSTypes["ext4"])
	assert.False(t, excludedFSTypes["xfs"])
}
