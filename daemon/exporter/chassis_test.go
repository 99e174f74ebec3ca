package exporter

import (
	"testing"

	"github.com/all-smi-go/agent/daemon/domain"
	"github.com/stretchr/testify/assert"
)

func TestWriteChassisMetricsOmitsAbsentSensors(t *testing.T) {
	b := NewBuilder()
	WriteChassisMetrics(b, domain.ChassisSnapshot{})
	out := b.String()
	assert.NotContains(t, out, "all_smi_chassis_power_consumption_watts")
	assert.NotContains(t, out, "all_smi_thermal_pressure")
}

func TestWriteChassisMetricsThermalPressureOneHot(t *testing.T) {
	pressure := domain.ThermalFair
	b := NewBuilder()
	WriteChassisMetrics(b, domain.ChassisSnapshot{ThermalPressure: &pressure})
	out := b.String()
	assert.Contains(t, out, `level="Fair"} 1`)
	assert.Contains(t, out, `level="Nominal"} 0`)
}

func TestWriteChassisMetricsIncludesFans(t *testing.T) {
	b := NewBuilder()
	WriteChassisMetrics(b, domain.ChassisSnapshot{
		Fans: []domain.FanReading{{Name: "fan1", CurrentRPM: 1234}},
	})
	assert.Contains(t, b.String(), "all_smi_chassis_fan_rpm")
}
