package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultHasSaneTimeouts(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 3, cfg.Aggregator.RetryAttempts)
	assert.Equal(t, 120, cfg.Collector.RingCapacity)
	assert.Len(t, cfg.Collector.RestartBackoffTiers, 3)
}

func TestLoaderAppliesEnvOverride(t *testing.T) {
	t.Setenv("ALL_SMI_SERVER_BIND_ADDRESS", "127.0.0.1:9999")
	l := NewLoader("")
	cfg := l.Load()
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.BindAddress)
}

func TestLoaderAppliesFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "all-smi.yaml")
	err := os.WriteFile(path, []byte("aggregator:\n  concurrency_cap: 2\n"), 0644)
	assert.NoError(t, err)

	l := NewLoader(path)
	cfg := l.Load()
	assert.Equal(t, 2, cfg.Aggregator.ConcurrencyCap)
}

func TestLoadPeersFromLegacyINIWithoutFileIsEmpty(t *testing.T) {
	peers := loadPeersFromLegacyINI()
	assert.Empty(t, peers)
}
