package domain

import "fmt"

// Kind is the taxonomy of reader-facing failure classes, mirrored from
// original_source's Error enum (PlatformInit, NoDevicesFound, DeviceAccess,
// PermissionDenied, NotSupported, Io).
type Kind string

const (
	// KindPlatformInit: a vendor library or native API is unavailable on
	// this platform (e.g. NVML.dll missing, IOReport unavailable on Linux).
	KindPlatformInit Kind = "platform_init"
	// KindNoDevicesFound: the probe succeeded but found no hardware.
	// Informational, not a failure.
	KindNoDevicesFound Kind = "no_devices_found"
	// KindDeviceAccess: detected hardware could not be queried this tick.
	// Transient; the caller should retry on the next scrape.
	KindDeviceAccess Kind = "device_access"
	// KindPermissionDenied: the process lacks a required privilege.
	KindPermissionDenied Kind = "permission_denied"
	// KindNotSupported: the caller asked for a capability the platform
	// lacks entirely (never transient).
	KindNotSupported Kind = "not_supported"
	// KindIO wraps an underlying system I/O failure.
	KindIO Kind = "io"
)

// Error is the agent's sentinel-wrapped error type. Callers compare against
// a Kind with errors.Is(err, domain.Error{Kind: domain.KindPermissionDenied})
// or extract detail with errors.As.
type Error struct {
	Kind   Kind
	Source string // component that raised it, e.g. "nvidia", "hlsmi"
	Reason string
	Err    error // wrapped cause, may be nil
}

func (e Error) Error() string {
	if e.Reason == "" && e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Source, e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Source, e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Source, e.Kind, e.Reason)
}

func (e Error) Unwrap() error { return e.Err }

// Is compares by Kind only, so errors.Is(err, domain.Error{Kind: X}) works
// regardless of Source/Reason/Err.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NewPlatformInit(source, reason string, cause error) error {
	return Error{Kind: KindPlatformInit, Source: source, Reason: reason, Err: cause}
}

func NewDeviceAccess(source, reason string, cause error) error {
	return Error{Kind: KindDeviceAccess, Source: source, Reason: reason, Err: cause}
}

func NewPermissionDenied(source, reason string) error {
	return Error{Kind: KindPermissionDenied, Source: source, Reason: reason}
}

func NewNotSupported(source, reason string) error {
	return Error{Kind: KindNotSupported, Source: source, Reason: reason}
}

func NewIO(source, reason string, cause error) error {
	return Error{Kind: KindIO, Source: source, Reason: reason, Err: cause}
}

// CommandFailed reports a validated child-process invocation that exited
// non-zero or otherwise failed; command.Output wraps it in a
// KindDeviceAccess Error, and readers drop that error rather than let it
// escape SnapshotDevices.
type CommandFailed struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandFailed) Error() string {
	return fmt.Sprintf("command %q failed (exit %d): %s", e.Command, e.ExitCode, e.Stderr)
}

// ParseError reports a sample or line that could not be parsed into a typed
// record. Collector and exporter-facing parsers return this; callers log
// and fall back to a cached value or drop the sample.
type ParseError struct {
	Source string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse error: %s", e.Source, e.Reason)
}
