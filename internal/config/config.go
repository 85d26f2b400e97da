package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"gofinances/internal/core"
	"gofinances/internal/log"
)

type Config struct {
	// HTTP Server
	Port string

	// Transactions service, set once at startup and read-only afterwards.
	DataSource         string // http or memory
	TransactionsAPIURL string
	APITimeout         time.Duration

	// Display
	Locale         string
	Currency       string
	CurrencySymbol string
	Timezone       string

	// Logging
	LogLevel  string
	LogFormat string

	// Rate limiting of dashboard loads, per client IP
	RateLimitPerMinute int

	// Fixture service
	FixturePort     string
	FixtureSeedFile string
}

// Load reads the configuration from the environment, after applying an
// optional .env file from the working directory.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8081"),

		DataSource:         getEnv("DATA_SOURCE", "http"),
		TransactionsAPIURL: getEnv("TRANSACTIONS_API_URL", "http://localhost:3333"),
		APITimeout:         getEnvDuration("API_TIMEOUT", 7*time.Second),

		Locale:         getEnv("LOCALE", "pt-BR"),
		Currency:       getEnv("CURRENCY", "BRL"),
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "R$"),
		Timezone:       getEnv("TIMEZONE", "UTC"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		FixturePort:     getEnv("FIXTURE_PORT", "3333"),
		FixtureSeedFile: getEnv("FIXTURE_SEED_FILE", "data/transactions.json"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	for _, p := range []struct{ name, value string }{{"port", c.Port}, {"fixture port", c.FixturePort}} {
		if port, err := strconv.Atoi(p.value); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': must be a number", p.name, p.value))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid %s %d: must be between 1 and 65535", p.name, port))
		}
	}

	if c.TransactionsAPIURL == "" {
		errors = append(errors, "transactions API URL cannot be empty")
	} else if parsedURL, err := url.Parse(c.TransactionsAPIURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid transactions API URL '%s': %v", c.TransactionsAPIURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid transactions API URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	} else if parsedURL.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid transactions API URL '%s': missing host", c.TransactionsAPIURL))
	}

	if ds := strings.ToLower(c.DataSource); ds != "http" && ds != "memory" {
		errors = append(errors, fmt.Sprintf("invalid data source '%s': must be 'http' or 'memory'", c.DataSource))
	}

	if c.APITimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must be at least 100ms", c.APITimeout))
	} else if c.APITimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must be at most 1 minute", c.APITimeout))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}
	if _, err := core.NewFormatter(core.FormatterConfig{Locale: c.Locale, Currency: c.Currency}); err != nil {
		errors = append(errors, fmt.Sprintf("invalid display settings: %v", err))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// FormatterConfig derives the display settings. Call after Validate.
func (c *Config) FormatterConfig() (core.FormatterConfig, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return core.FormatterConfig{}, fmt.Errorf("load timezone %s: %w", c.Timezone, err)
	}
	return core.FormatterConfig{
		Locale:   c.Locale,
		Currency: c.Currency,
		Symbol:   c.CurrencySymbol,
		Location: loc,
	}, nil
}

// LoggerConfig derives the logger settings. Call after Validate.
func (c *Config) LoggerConfig(component string) log.Config {
	cfg := log.DefaultConfig()
	if level, err := log.ParseLevel(c.LogLevel); err == nil {
		cfg.Level = level
	}
	cfg.Format = strings.ToLower(c.LogFormat)
	cfg.Component = component
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
