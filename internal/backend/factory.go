package backend

import (
	"context"
	"fmt"
	"log/slog"

	"gofinances/internal/api"
	"gofinances/internal/api/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new source factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateSource implements Factory.CreateSource
func (f *DefaultFactory) CreateSource(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case HTTPSource:
		return f.createHTTPSource(config)
	case MemorySource:
		return f.createMemorySource(config)
	default:
		return nil, fmt.Errorf("unsupported data source: %s", config.Type)
	}
}

func (f *DefaultFactory) createHTTPSource(config Config) (*Result, error) {
	opts := []api.Option{api.WithLogger(f.logger)}
	if config.Timeout > 0 {
		opts = append(opts, api.WithTimeout(config.Timeout))
	}
	client, err := api.NewClient(config.BaseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize transactions client: %w", err)
	}

	f.logger.Info("Initialized HTTP data source", "base_url", client.BaseURL(), "timeout", config.Timeout)

	return &Result{Source: client}, nil
}

func (f *DefaultFactory) createMemorySource(config Config) (*Result, error) {
	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed file: %w", err)
	}

	f.logger.Info("Initialized memory data source", "seed_file", config.SeedFile, "transactions", store.Len())

	return &Result{Source: store}, nil
}
