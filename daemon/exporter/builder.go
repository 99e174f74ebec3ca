// Package exporter renders the agent's device-neutral snapshots into
// Prometheus text exposition format. It is a hand-rolled builder rather
// than github.com/prometheus/client_golang's registry: device counts vary
// scrape-to-scrape (hot-plugged GPUs, a vendor CLI that stops responding),
// which does not fit client_golang's pre-registered-collector model. The
// agent's own process health metrics (daemon/api) still ride the standard
// client_golang registry via promhttp.
package exporter

import (
	"strconv"
	"strings"
)

// maxLabelValueLen is spec.md §4.1 rule 6: vendor-derived strings are
// truncated to 128 characters before becoming a label value.
const maxLabelValueLen = 128

// Label is one ordered label key/value pair. Builder preserves insertion
// order so metric lines are stable across emissions.
type Label struct {
	Key   string
	Value string
}

// MetricKind is a Prometheus metric type.
type MetricKind string

const (
	KindGauge   MetricKind = "gauge"
	KindCounter MetricKind = "counter"
	KindInfo    MetricKind = "info"
	KindUntyped MetricKind = "untyped"
)

// Builder assembles Prometheus text exposition output. It suppresses
// repeated HELP/TYPE lines for a metric name already declared in this
// Builder's lifetime.
type Builder struct {
	sb       strings.Builder
	declared map[string]bool
}

// NewBuilder returns an empty Builder ready for one scrape's output.
func NewBuilder() *Builder {
	return &Builder{declared: make(map[string]bool)}
}

// Help emits a `# HELP name text` line, once per name.
func (b *Builder) Help(name, helpText string) {
	if b.declared["help:"+name] {
		return
	}
	b.declared["help:"+name] = true
	b.sb.WriteString("# HELP ")
	b.sb.WriteString(name)
	b.sb.WriteByte(' ')
	b.sb.WriteString(helpText)
	b.sb.WriteByte('\n')
}

// Type emits a `# TYPE name kind` line, once per name.
func (b *Builder) Type(name string, kind MetricKind) {
	if b.declared["type:"+name] {
		return
	}
	b.declared["type:"+name] = true
	b.sb.WriteString("# TYPE ")
	b.sb.WriteString(name)
	b.sb.WriteByte(' ')
	b.sb.WriteString(string(kind))
	b.sb.WriteByte('\n')
}

// Metric emits one `name{k="v",...} value` line. Values serialize as an
// integer when integral, else as canonical floating point; NaN/Inf are
// never written (callers must not pass them).
func (b *Builder) Metric(name string, labels []Label, value float64) {
	b.sb.WriteString(name)
	if len(labels) > 0 {
		b.sb.WriteByte('{')
		for i, l := range labels {
			if i > 0 {
				b.sb.WriteByte(',')
			}
			b.sb.WriteString(l.Key)
			b.sb.WriteString(`="`)
			b.sb.WriteString(EscapeLabelValue(l.Value))
			b.sb.WriteByte('"')
		}
		b.sb.WriteByte('}')
	}
	b.sb.WriteByte(' ')
	b.sb.WriteString(formatValue(value))
	b.sb.WriteByte('\n')
}

// String returns the accumulated exposition text.
func (b *Builder) String() string { return b.sb.String() }

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EscapeLabelValue escapes backslash, double-quote, and newline per the
// Prometheus text format, matching MetricBuilder's contract.
func EscapeLabelValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	v = strings.ReplaceAll(v, "\n", `\n`)
	return v
}

// SanitizeLabelValue enforces spec.md §4.1 rule 6 on vendor-derived
// strings: truncate to 128 characters, replace characters outside
// [A-Za-z0-9_.-] with '_'.
func SanitizeLabelValue(v string) string {
	if len(v) > maxLabelValueLen {
		v = v[:maxLabelValueLen]
	}
	var sb strings.Builder
	sb.Grow(len(v))
	for _, r := range v {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
