package exporter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilderSuppressesRepeatedHelpAndType(t *testing.T) {
	b := NewBuilder()
	b.Help("all_smi_cpu_utilization", "CPU utilization percentage")
	b.Type("all_smi_cpu_utilization", KindGauge)
	b.Metric("all_smi_cpu_utilization", []Label{{Key: "instance", Value: "a"}}, 42)
	b.Help("all_smi_cpu_utilization", "CPU utilization percentage")
	b.Type("all_smi_cpu_utilization", KindGauge)
	b.Metric("all_smi_cpu_utilization", []Label{{Key: "instance", Value: "b"}}, 17)

	out := b.String()
	assert.Equal(t, 1, strings.Count(out, "# HELP all_smi_cpu_utilization"))
	assert.Equal(t, 1, strings.Count(out, "# TYPE all_smi_cpu_utilization"))
	assert.Contains(t, out, `all_smi_cpu_utilization{instance="a"} 42`)
	assert.Contains(t, out, `all_smi_cpu_utilization{instance="b"} 17`)
}

func TestMetricSerializesIntegralValuesWithoutDecimal(t *testing.T) {
	b := NewBuilder()
	b.Metric("all_smi_cpu_core_count", nil, 8)
	assert.Equal(t, "all_smi_cpu_core_count 8\n", b.String())
}

func TestMetricSerializesFractionalValues(t *testing.T) {
	b := NewBuilder()
	b.Metric("all_smi_cpu_utilization", nil, 42.5)
	assert.Equal(t, "all_smi_cpu_utilization 42.5\n", b.String())
}

func TestEscapeLabelValue(t *testing.T) {
	assert.Equal(t, `a\\b\"c\nd`, EscapeLabelValue("a\\b\"c\nd"))
}

func TestSanitizeLabelValueReplacesDisallowedCharsAndTruncates(t *testing.T) {
	assert.Equal(t, "a_b_c", SanitizeLabelValue("a b!c"))
	assert.Equal(t, 128, len(SanitizeLabelValue(strings.Repeat("x", 500))))
}
