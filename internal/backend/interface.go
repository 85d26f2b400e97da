package backend

import (
	"context"
	"time"

	"gofinances/internal/api"
)

// Source is a transactions data source the dashboard can read from.
type Source interface {
	api.TransactionsReader
	api.Pinger
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the source instance and optional cleanup function
type Result struct {
	Source  Source
	Cleanup CleanupFunc
}

// Factory creates sources based on configuration
type Factory interface {
	CreateSource(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for source creation
type Config struct {
	Type Type

	// HTTP specific
	BaseURL string
	Timeout time.Duration

	// Memory specific
	SeedFile string
}

// Type represents the kind of data source
type Type string

const (
	// HTTPSource reads from the remote transactions service.
	HTTPSource Type = "http"
	// MemorySource serves a seed file in-process, for demos without the service.
	MemorySource Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the source type is known
func (t Type) IsValid() bool {
	switch t {
	case HTTPSource, MemorySource:
		return true
	default:
		return false
	}
}
