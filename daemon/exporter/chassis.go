package exporter

import (
	"strconv"

	"github.com/all-smi-go/agent/daemon/domain"
)

// thermalPressureLevels is the fixed label set all_smi_thermal_pressure
// reports over, one sample per known level with a 0/1 indicator — the
// Prometheus-idiomatic way to expose an enum, per spec.md §6's
// `thermal_pressure` metric class.
var thermalPressureLevels = []domain.ThermalPressure{
	domain.ThermalNominal, domain.ThermalFair, domain.ThermalSerious, domain.ThermalCritical,
}

// WriteChassisMetrics appends one host's chassis sensor metrics: total
// power, inlet/outlet temperature, thermal pressure, fan speeds, and PSU
// health. Any field the platform does not expose is omitted rather than
// reported as zero.
func WriteChassisMetrics(b *Builder, snap domain.ChassisSnapshot) {
	labels := []Label{
		{Key: "instance", Value: snap.Instance},
		{Key: "hostname", Value: snap.Hostname},
		{Key: "host_id", Value: snap.HostID},
	}

	if snap.TotalPowerWatts != nil {
		b.Help("all_smi_chassis_power_consumption_watts", "Chassis total power consumption in watts")
		b.Type("all_smi_chassis_power_consumption_watts", KindGauge)
		b.Metric("all_smi_chassis_power_consumption_watts", labels, *snap.TotalPowerWatts)
	}

	if snap.InletTemperatureC != nil {
		b.Help("all_smi_chassis_inlet_temperature_celsius", "Chassis inlet temperature in celsius")
		b.Type("all_smi_chassis_inlet_temperature_celsius", KindGauge)
		b.Metric("all_smi_chassis_inlet_temperature_celsius", labels, *snap.InletTemperatureC)
	}

	if snap.OutletTemperatureC != nil {
		b.Help("all_smi_chassis_outlet_temperature_celsius", "Chassis outlet temperature in celsius")
		b.Type("all_smi_chassis_outlet_temperature_celsius", KindGauge)
		b.Metric("all_smi_chassis_outlet_temperature_celsius", labels, *snap.OutletTemperatureC)
	}

	if snap.ThermalPressure != nil {
		b.Help("all_smi_thermal_pressure", "Thermal pressure level indicator (1 = current level)")
		b.Type("all_smi_thermal_pressure", KindGauge)
		for _, level := range thermalPressureLevels {
			levelLabels := append(append([]Label{}, labels...), Label{Key: "level", Value: string(level)})
			value := 0.0
			if level == *snap.ThermalPressure {
				value = 1.0
			}
			b.Metric("all_smi_thermal_pressure", levelLabels, value)
		}
	}

	for i, fan := range snap.Fans {
		fanLabels := append(append([]Label{}, labels...),
			Label{Key: "fan", Value: SanitizeLabelValue(fan.Name)},
			Label{Key: "index", Value: strconv.Itoa(i)},
		)
		b.Help("all_smi_chassis_fan_rpm", "Chassis fan speed in RPM")
		b.Type("all_smi_chassis_fan_rpm", KindGauge)
		b.Metric("all_smi_chassis_fan_rpm", fanLabels, float64(fan.CurrentRPM))
	}

	for _, psu := range snap.PSUs {
		psuLabels := append(append([]Label{}, labels...),
			Label{Key: "psu", Value: SanitizeLabelValue(psu.Name)},
			Label{Key: "status", Value: string(psu.Status)},
		)
		b.Help("all_smi_chassis_psu_status", "Chassis PSU health (1 = this status is current)")
		b.Type("all_smi_chassis_psu_status", KindGauge)
		b.Metric("all_smi_chassis_psu_status", psuLabels, 1)
	}
}
