package backend

import (
	"fmt"

	"gofinances/internal/config"
)

// FromAppConfig converts the application config to source config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	t := Type(appConfig.DataSource)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid data source in config: %s", appConfig.DataSource)
	}

	return Config{
		Type:     t,
		BaseURL:  appConfig.TransactionsAPIURL,
		Timeout:  appConfig.APITimeout,
		SeedFile: appConfig.FixtureSeedFile,
	}, nil
}

// Validate validates the source configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid data source: %s", c.Type)
	}

	switch c.Type {
	case HTTPSource:
		if c.BaseURL == "" {
			return fmt.Errorf("base URL is required for http source")
		}
	case MemorySource:
		// An empty or missing seed file falls back to the built-in seed.
	}
	return nil
}

// Types returns all valid source types
func Types() []Type {
	return []Type{HTTPSource, MemorySource}
}

// TypeStrings returns all valid source type strings
func TypeStrings() []string {
	types := Types()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
