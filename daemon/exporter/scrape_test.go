package exporter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/stretchr/testify/assert"
)

type fakeDeviceReader struct{ devices []domain.DeviceSnapshot }

func (f fakeDeviceReader) SnapshotDevices(ctx context.Context) []domain.DeviceSnapshot {
	return f.devices
}

type failingCPUReader struct{}

func (failingCPUReader) SnapshotCPU(ctx context.Context) (domain.CPUSnapshot, error) {
	return domain.CPUSnapshot{}, errors.New("boom")
}

func TestScraperRenderConcatenatesDeviceReadersInOrder(t *testing.T) {
	r1 := fakeDeviceReader{devices: []domain.DeviceSnapshot{{UUID: "a", Type: domain.DeviceTypeGPU}}}
	r2 := fakeDeviceReader{devices: []domain.DeviceSnapshot{{UUID: "b", Type: domain.DeviceTypeGPU}}}
	s := NewScraper([]domain.DeviceReader{r1, r2}, nil, nil, nil, nil, nil)
	out := s.Render(context.Background())
	assert.Contains(t, out, `uuid="a"`)
	assert.Contains(t, out, `uuid="b"`)
	assert.Less(t, strings.Index(out, `uuid="a"`), strings.Index(out, `uuid="b"`))
}

func TestScraperRenderDegradesOnReaderErrorRatherThanAborting(t *testing.T) {
	s := NewScraper(nil, failingCPUReader{}, nil, nil, nil, nil)
	out := s.Render(context.Background())
	assert.Equal(t, "", out)
}

func TestScraperDeviceCount(t *testing.T) {
	r1 := fakeDeviceReader{devices: []domain.DeviceSnapshot{{UUID: "a"}, {UUID: "b"}}}
	s := NewScraper([]domain.DeviceReader{r1}, nil, nil, nil, nil, nil)
	assert.Equal(t, 2, s.DeviceCount(context.Background()))
}
