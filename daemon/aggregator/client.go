package aggregator

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/http2"

	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/all-smi-go/agent/daemon/logger"
)

var validate = validator.New()

// Config holds the fleet-aggregator client's tunables, all of which
// spec.md §4.7/§6 calls out as environment-configurable.
type Config struct {
	Peers []string `validate:"dive,hostname_port"`

	RequestTimeout  time.Duration `validate:"required,gt=0"`
	ConcurrencyCap  int           `validate:"required,gt=0"`
	StaggerInterval time.Duration `validate:"gte=0"`
	RetryAttempts   int           `validate:"required,gt=0"`
	RetryBaseDelay  time.Duration `validate:"required,gt=0"`

	DialTimeout            time.Duration `validate:"required,gt=0"`
	TCPKeepAlive           time.Duration `validate:"required,gt=0"`
	IdleConnTimeout        time.Duration `validate:"required,gt=0"`
	MaxIdleConnsPerHost    int           `validate:"required,gt=0"`
	HTTP2KeepAliveInterval time.Duration `validate:"required,gt=0"`
}

// DefaultConfig returns the client's built-in defaults: 3 retry attempts, a
// modest concurrency ceiling, short stagger.
func DefaultConfig(peers []string) Config {
	return Config{
		Peers:                  peers,
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
}

// Stats carries per-report connection outcome counts, per spec.md §4.7
// rule 5.
type Stats struct {
	Successes int
	Failures  int
}

// Report is the fleet aggregator's return value: the concatenation of every
// reachable peer's rehydrated snapshots, plus connection stats for logging.
type Report struct {
	GPUs    []domain.DeviceSnapshot
	CPUs    []domain.CPUSnapshot
	Memory  []domain.MemorySnapshot
	Storage []domain.StorageSnapshot
	Stats   Stats
}

// Client fetches peer agents' Prometheus endpoints under a stagger
// schedule, a concurrency cap, and per-request retry with backoff+jitter.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient validates cfg and builds a Client whose transport settings
// (idle timeouts, per-host pool max, keepalive) come straight from cfg.
func NewClient(cfg Config) (*Client, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("aggregator: invalid config: %w", err)
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.TCPKeepAlive,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:       cfg.MaxIdleConnsPerHost,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if h2, err := http2.ConfigureTransports(transport); err == nil {
		h2.ReadIdleTimeout = cfg.HTTP2KeepAliveInterval
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Transport: transport},
	}, nil
}

// FetchAll fetches every configured peer's /metrics endpoint and returns the
// concatenated report. Per spec.md §4.7: staggered start, semaphore-capped
// concurrency, per-request retry, best-effort parse. A peer that never
// succeeds contributes nothing but one failure to Stats; it never aborts
// the others.
func (c *Client) FetchAll(ctx context.Context) Report {
	sem := make(chan struct{}, c.cfg.ConcurrencyCap)
	results := make(chan ParsedSnapshots, len(c.cfg.Peers))
	var stats Stats
	var statsMu sync.Mutex

	var wg sync.WaitGroup
	for i, peer := range c.cfg.Peers {
		wg.Add(1)
		go func(index int, peerAddr string) {
			defer wg.Done()

			delay := time.Duration(index) * c.cfg.StaggerInterval
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			start := time.Now()
			body, err := c.fetchWithRetry(ctx, peerAddr)
			logger.LogPeerScrape(peerAddr, err == nil, time.Since(start), err)

			statsMu.Lock()
			if err != nil {
				stats.Failures++
				statsMu.Unlock()
				return
			}
			stats.Successes++
			statsMu.Unlock()

			results <- ParseExposition(body, peerAddr)
		}(i, peer)
	}

	wg.Wait()
	close(results)

	report := Report{Stats: stats}
	for parsed := range results {
		report.GPUs = append(report.GPUs, parsed.GPUs...)
		report.CPUs = append(report.CPUs, parsed.CPUs...)
		report.Memory = append(report.Memory, parsed.Memory...)
		report.Storage = append(report.Storage, parsed.Storage...)
	}
	return report
}

// fetchWithRetry attempts one peer up to RetryAttempts times. Connection
// errors, non-2xx statuses, and body-read failures all count as attempts,
// per spec.md §4.7 rule 3.
func (c *Client) fetchWithRetry(ctx context.Context, peerAddr string) (string, error) {
	url := "http://" + peerAddr + "/metrics"

	var lastErr error
	for attempt := 1; attempt <= c.cfg.RetryAttempts; attempt++ {
		body, err := c.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt == c.cfg.RetryAttempts {
			break
		}
		backoff := c.retryBackoff(attempt)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("peer %s unreachable after %d attempts: %w", peerAddr, c.cfg.RetryAttempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, url string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// retryBackoff is exponential(attempt) + jitter, per spec.md §4.7 rule 3.
func (c *Client) retryBackoff(attempt int) time.Duration {
	exp := math.Pow(2, float64(attempt-1))
	jitter := time.Duration(rand.Int63n(int64(c.cfg.RetryBaseDelay)))
	return time.Duration(exp)*c.cfg.RetryBaseDelay + jitter
}
