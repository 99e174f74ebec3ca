package container

import "github.com/all-smi-go/agent/daemon/domain"

// Info is an alias to the shared domain type so this package's exported
// API reads naturally (container.Info) while keeping one struct definition.
type Info = domain.ContainerInfo
