package exporter

import (
	"testing"

	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/stretchr/testify/assert"
)

func TestWriteDeviceMetricsOmitsAbsentOptionalFields(t *testing.T) {
	b := NewBuilder()
	devices := []domain.DeviceSnapshot{{
		UUID:               "gpu-0",
		Name:               "NVIDIA A100",
		Type:               domain.DeviceTypeGPU,
		Instance:           "host:9090",
		Hostname:           "host",
		HostID:             "host-1",
		UtilizationPercent: 55,
	}}
	WriteDeviceMetrics(b, devices)
	out := b.String()

	assert.Contains(t, out, "all_smi_gpu_utilization")
	assert.NotContains(t, out, "all_smi_gpu_memory_used_bytes")
	assert.NotContains(t, out, "all_smi_dla_utilization")
	assert.NotContains(t, out, "all_smi_ane_utilization")
}

func TestWriteDeviceMetricsIncludesDLAWhenPresent(t *testing.T) {
	dla := 12.5
	b := NewBuilder()
	devices := []domain.DeviceSnapshot{{
		UUID:                  "jetson-0",
		Name:                  "NVIDIA Jetson AGX Orin",
		Type:                  domain.DeviceTypeGPU,
		DLAUtilizationPercent: &dla,
	}}
	WriteDeviceMetrics(b, devices)
	assert.Contains(t, b.String(), `all_smi_dla_utilization{`)
}

func TestNPUVendorDispatchMatchesByDetailKeyFallback(t *testing.T) {
	b := NewBuilder()
	devices := []domain.DeviceSnapshot{{
		UUID: "npu-0",
		Name: "Custom Branded NPU",
		Type: domain.DeviceTypeNPU,
		Detail: map[string]string{
			"board_serial": "TT-0001",
			"axiclk_mhz":   "900",
		},
	}}
	WriteDeviceMetrics(b, devices)
	assert.Contains(t, b.String(), "all_smi_axiclk_mhz")
}

func TestNPUVendorDispatchMatchesByNameSubstring(t *testing.T) {
	b := NewBuilder()
	devices := []domain.DeviceSnapshot{{
		UUID: "npu-0",
		Name: "Intel Gaudi 3 PCIe",
		Type: domain.DeviceTypeNPU,
		Detail: map[string]string{
			"power_max_w":    "600",
			"driver_version": "1.22.1",
		},
	}}
	WriteDeviceMetrics(b, devices)
	assert.Contains(t, b.String(), "all_smi_gaudi_power_limit_watts")
}
