package api

import (
	"github.com/segmentio/ksuid"

	"github.com/ssargent/navcodec/pkg/codec"
	"github.com/ssargent/navcodec/pkg/journal"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string // empty disables authentication
	Codec  codec.Config
}

// RunStore is the part of the journal the server needs. A nil RunStore
// disables run recording and the runs endpoint.
type RunStore interface {
	Record(run journal.Run) (ksuid.KSUID, error)
	List(limit int) ([]journal.Run, error)
}

// RunsResponse is returned by the runs endpoint
type RunsResponse struct {
	Runs  []journal.Run `json:"runs"`
	Count int           `json:"count"`
}
