package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstanceLabelUsesBindAddressPort(t *testing.T) {
	assert.Equal(t, "box:9100", instanceLabel("box", "0.0.0.0:9100"))
}

func TestInstanceLabelFallsBackToHostnameWithoutPort(t *testing.T) {
	assert.Equal(t, "box", instanceLabel("box", "invalid-address"))
}

func TestResolveIdentityNeverReturnsEmptyHostID(t *testing.T) {
	id := resolveIdentity("0.0.0.0:9100")
	assert.NotEmpty(t, id.hostID)
	assert.NotEmpty(t, id.hostname)
	assert.NotEmpty(t, id.instance)
}
