package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/all-smi-go/agent/daemon/config"
)

func TestToAggregatorConfigCopiesEveryField(t *testing.T) {
	src := config.AggregatorConfig{
		Peers:                  []string{"a:9100", "b:9100"},
		RequestTimeout:         5 * time.Second,
		ConcurrencyCap:         8,
		StaggerInterval:        50 * time.Millisecond,
		RetryAttempts:          3,
		RetryBaseDelay:         200 * time.Millisecond,
		DialTimeout:            3 * time.Second,
		TCPKeepAlive:           30 * time.Second,
		IdleConnTimeout:        90 * time.Second,
		MaxIdleConnsPerHost:    4,
		HTTP2KeepAliveInterval: 30 * time.Second,
	}

	got := toAggregatorConfig(src)

	assert.Equal(t, src.Peers, got.Peers)
	assert.Equal(t, src.RequestTimeout, got.RequestTimeout)
	assert.Equal(t, src.ConcurrencyCap, got.ConcurrencyCap)
	assert.Equal(t, src.StaggerInterval, got.StaggerInterval)
	assert.Equal(t, src.RetryAttempts, got.RetryAttempts)
	assert.Equal(t, src.RetryBaseDelay, got.RetryBaseDelay)
	assert.Equal(t, src.DialTimeout, got.DialTimeout)
	assert.Equal(t, src.TCPKeepAlive, got.TCPKeepAlive)
	assert.Equal(t, src.IdleConnTimeout, got.IdleConnTimeout)
	assert.Equal(t, src.MaxIdleConnsPerHost, got.MaxIdleConnsPerHost)
	assert.Equal(t, src.HTTP2KeepAliveInterval, got.HTTP2KeepAliveInterval)
}
