package gaudi

import "strings"

// NewFrame returns a FrameFunc-compatible closure that accumulates hl-smi
// CSV lines (one per device) into a single sample until a blank line marks
// the end of a tick's block, per spec.md §9's "scan for the vendor's
// section delimiter" framing rule. hl-smi's `-l <seconds>` mode emits one
// block of device rows per interval separated by a blank line.
func NewFrame() func(line string) (string, bool) {
	var buf []string
	return func(line string) (string, bool) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(buf) == 0 {
				return "", false
			}
			sample := strings.Join(buf, "\n")
			buf = nil
			return sample, true
		}
		buf = append(buf, trimmed)
		return "", false
	}
}
