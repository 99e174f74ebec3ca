package cmd

import (
	"os"
	"strings"

	"github.com/google/uuid"
)

// identity is the (host_id, hostname, instance) triple every reader
// constructor takes, per spec.md §3's "Identity" field list.
type identity struct {
	hostID   string
	hostname string
	instance string
}

// resolveIdentity derives the agent's identity labels once at startup.
// host_id must be "stable per boot" (spec.md §3); Linux/most containers
// expose that via /etc/machine-id, so that is tried first, with a
// freshly generated UUID as the fallback for platforms without one.
func resolveIdentity(bindAddress string) identity {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "unknown-host"
	}

	return identity{
		hostID:   machineID(),
		hostname: hostname,
		instance: instanceLabel(hostname, bindAddress),
	}
}

func machineID() string {
	for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		if b, err := os.ReadFile(path); err == nil {
			if id := strings.TrimSpace(string(b)); id != "" {
				return id
			}
		}
	}
	return uuid.NewString()
}

// instanceLabel mirrors the Prometheus "instance" convention of
// host:port, using the agent's own bind address's port.
func instanceLabel(hostname, bindAddress string) string {
	if i := strings.LastIndex(bindAddress, ":"); i >= 0 {
		return hostname + bindAddress[i:]
	}
	return hostname
}
