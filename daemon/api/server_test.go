package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeScraper struct {
	body        string
	deviceCount int
}

func (f fakeScraper) Render(ctx context.Context) string  { return f.body }
func (f fakeScraper) DeviceCount(ctx context.Context) int { return f.deviceCount }

func TestHandleScrapeServesExpositionWithHeaders(t *testing.T) {
	s := &Server{}
	s.ready.Store(true)
	handler := s.handleScrape(fakeScraper{body: "all_smi_cpu_utilization 1\n", deviceCount: 0})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "max-age=2, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "all_smi_cpu_utilization 1\n", rec.Body.String())
}

func TestHandleHealthzReflectsReadiness(t *testing.T) {
	s := &Server{}
	s.ready.Store(true)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.handleHealthz(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.ready.Store(false)
	rec = httptest.NewRecorder()
	s.handleHealthz(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleScrapeReturns503WhenNotReady(t *testing.T) {
	s := &Server{}
	s.ready.Store(false)
	handler := s.handleScrape(fakeScraper{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
