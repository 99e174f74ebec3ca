// Package cmd holds the kong CLI command structs that wire together every
// other package into a running agent, grounded in daemon/cmd/boot.go and
// daemon/cmd/config.go's Run(ctx *domain.Context) error convention.
package cmd

import (
	"github.com/cskr/pubsub"

	"github.com/all-smi-go/agent/daemon/config"
)

// Context is threaded into every kong command's Run method, carrying the
// resolved configuration and the process-wide event bus.
type Context struct {
	Config *config.Config
	Hub    *pubsub.PubSub
}
