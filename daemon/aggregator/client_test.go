package aggregator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(peers []string) Config {
	cfg := DefaultConfig(peers)
	cfg.RequestTimeout = 500 * time.Millisecond
	cfg.StaggerInterval = time.Millisecond
	cfg.RetryAttempts = 2
	cfg.RetryBaseDelay = 5 * time.Millisecond
	return cfg
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig([]string{"not a host port"})
	_, err := NewClient(cfg)
	assert.Error(t, err)
}

func TestFetchAllAggregatesAcrossPeers(t *testing.T) {
	srv1 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`all_smi_memory_total_bytes{instance="a"} 100`))
	}))
	defer srv1.Close()
	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`all_smi_memory_total_bytes{instance="b"} 200`))
	}))
	defer srv2.Close()

	cfg := testConfig([]string{hostPort(srv1), hostPort(srv2)})
	client, err := NewClient(cfg)
	require.NoError(t, err)

	report := client.FetchAll(context.Background())
	assert.Equal(t, 2, report.Stats.Successes)
	assert.Equal(t, 0, report.Stats.Failures)
	assert.Len(t, report.Memory, 2)
}

func TestFetchAllRetriesThenSucceeds(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`all_smi_memory_total_bytes{instance="a"} 1`))
	}))
	defer srv.Close()

	cfg := testConfig([]string{hostPort(srv)})
	client, err := NewClient(cfg)
	require.NoError(t, err)

	report := client.FetchAll(context.Background())
	assert.Equal(t, 1, report.Stats.Successes)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&attempts), int32(2))
}

func TestFetchAllCountsExhaustedRetriesAsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig([]string{hostPort(srv)})
	client, err := NewClient(cfg)
	require.NoError(t, err)

	report := client.FetchAll(context.Background())
	assert.Equal(t, 0, report.Stats.Successes)
	assert.Equal(t, 1, report.Stats.Failures)
	assert.Empty(t, report.Memory)
}

func TestFetchAllOneFailingPeerDoesNotBlockOthers(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`all_smi_memory_total_bytes{instance="a"} 1`))
	}))
	defer good.Close()

	cfg := testConfig([]string{hostPort(bad), hostPort(good)})
	client, err := NewClient(cfg)
	require.NoError(t, err)

	report := client.FetchAll(context.Background())
	assert.Equal(t, 1, report.Stats.Successes)
	assert.Equal(t, 1, report.Stats.Failures)
	assert.Len(t, report.Memory, 1)
}

func hostPort(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}
