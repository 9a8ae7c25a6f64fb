// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/ssargent/navcodec/pkg/logger"
)

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves the API until ctx is cancelled
	StartServer(ctx context.Context, config ServerConfig, runs RunStore, log *logger.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
