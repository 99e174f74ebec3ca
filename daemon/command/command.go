// Package command runs the handful of external vendor tools this agent
// consumes (nvidia-smi, hl-smi, rbln-stat, tt-smi, furiosa-smi, sensors,
// powermetrics, vm_stat, sysctl) behind an allowlist and an
// injection-pattern denylist, never via a shell.
package command

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/all-smi-go/agent/daemon/domain"
)

// dangerousChars mirrors spec.md §4.1 rule 3: an argv string containing any
// of these is rejected outright. Commands are always exec'd directly
// (never via "sh -c"), so this is defense in depth against arguments that
// get forwarded to a nested shell by the vendor tool itself.
var dangerousChars = []string{
	";", "&", "|", "`", "$", "(", ")", "{", "}", "\n", "\r", "..",
}

// argFieldPattern is the default per-argument character class allowed when
// a tool has no tighter allowlist of its own (spec.md §6).
var argFieldPattern = regexp.MustCompile(`^[A-Za-z0-9._\-,=/:]+$`)

// allowedDirs lists the vendor install directories. Validate, Output and
// Start do not consult it: a bare command name is resolved through $PATH by
// os/exec, and a name with a directory prefix is accepted whenever its
// basename is allowlisted.
var allowedDirs = []string{
	"/usr/bin", "/usr/local/bin", "/usr/sbin", "/opt/rocm/bin", "/opt/habanalabs/bin",
}

// allowedCommands is the fixed set of basenames this agent ever invokes.
// Anything else is refused regardless of caller intent.
var allowedCommands = map[string]bool{
	"nvidia-smi":    true,
	"hl-smi":        true,
	"rbln-stat":     true,
	"rbln-smi":      true,
	"tt-smi":        true,
	"furiosa-smi":   true,
	"sensors":       true,
	"powermetrics":  true,
	"nice":          true,
	"vm_stat":       true,
	"sysctl":        true,
	"lspci":         true,
	"ps":            true,
}

// Validate checks a command basename and its arguments against the
// injection denylist and the agent's fixed allowlist. It never inspects
// PATH resolution itself — callers pass the basename they intend to exec.
func Validate(name string, args []string) error {
	base := name
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		base = name[idx+1:]
	}
	if !allowedCommands[base] {
		return fmt.Errorf("command %q is not in the agent's allowlist", base)
	}
	if err := validateToken(name); err != nil {
		return fmt.Errorf("command name: %w", err)
	}
	for _, a := range args {
		if err := validateToken(a); err != nil {
			return fmt.Errorf("argument %q: %w", a, err)
		}
	}
	return nil
}

func validateToken(s string) error {
	for _, bad := range dangerousChars {
		if strings.Contains(s, bad) {
			return fmt.Errorf("contains disallowed sequence %q", bad)
		}
	}
	return nil
}

// ValidateField checks a single argument value against a tool-specific
// allowlist pattern and max length, e.g. hl-smi query fields (spec.md §6:
// "[A-Za-z0-9._]+ and <=32 chars").
func ValidateField(value string, pattern *regexp.Regexp, maxLen int) error {
	if len(value) > maxLen {
		return fmt.Errorf("field %q exceeds max length %d", value, maxLen)
	}
	if pattern == nil {
		pattern = argFieldPattern
	}
	if !pattern.MatchString(value) {
		return fmt.Errorf("field %q does not match allowed pattern", value)
	}
	return nil
}

// Options configures one external command invocation.
type Options struct {
	Timeout time.Duration // zero means DefaultTimeout
	Nice    bool          // prefix with "nice -n 10" (Apple powermetrics)
}

// DefaultTimeout is the bound applied to a one-shot external tool
// invocation when Options.Timeout is unset. Collectors that spawn a
// long-running child (hl-smi -l, powermetrics -i) manage their own
// lifetime and do not use Output.
const DefaultTimeout = 5 * time.Second

// Output validates and runs name/args to completion, returning trimmed
// stdout. Never runs through a shell. A non-zero exit becomes a
// domain.CommandFailed wrapped as KindDeviceAccess.
func Output(ctx context.Context, source string, opts Options, name string, args ...string) (string, error) {
	if err := Validate(name, args); err != nil {
		return "", domain.NewDeviceAccess(source, "command validation failed", err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	argv := args
	cmdName := name
	if opts.Nice {
		argv = append([]string{"-n", "10", name}, args...)
		cmdName = "nice"
		if err := Validate(cmdName, nil); err != nil {
			return "", domain.NewDeviceAccess(source, "nice not allowed", err)
		}
	}

	cmd := exec.CommandContext(ctx, cmdName, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		return "", domain.NewDeviceAccess(source, "invocation failed", &domain.CommandFailed{
			Command:  cmdName,
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
		})
	}

	return strings.TrimSpace(stdout.String()), nil
}

// Start validates name/args for a long-running child (hl-smi -l N,
// powermetrics -i N) and returns an unstarted *exec.Cmd. It does not launch
// the process: callers attach the stdout pipe, start it, and own its
// lifecycle (see daemon/collector).
func Start(source string, opts Options, name string, args ...string) (*exec.Cmd, error) {
	if err := Validate(name, args); err != nil {
		return nil, domain.NewDeviceAccess(source, "command validation failed", err)
	}

	argv := args
	cmdName := name
	if opts.Nice {
		argv = append([]string{"-n", "10", name}, args...)
		cmdName = "nice"
	}

	cmd := exec.Command(cmdName, argv...)
	return cmd, nil
}
