// Package config provides configuration management using the Singleton pattern.
// It loads configuration from environment variables and config.yaml using Viper.
package config

import (
	"fmt"
	"sync"
)

// Provider selector values recognized by the AI section.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
	ProviderMock      = "mock"
)

// Configuration holds all application configuration values.
type Configuration struct {
	// Server configuration
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database" mapstructure:"database"`

	// Auth configuration
	Auth AuthConfig `json:"auth" mapstructure:"auth"`

	// AI provider configuration
	AI AIConfig `json:"ai" mapstructure:"ai"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	// Host is the server bind address.
	Host string `json:"host" mapstructure:"host"`

	// Port is the server port number.
	Port int `json:"port" mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeoutSeconds int `json:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeoutSeconds int `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds"`
}

// DatabaseConfig holds persistence configuration.
type DatabaseConfig struct {
	// Driver selects the store implementation (sqlite, memory).
	Driver string `json:"driver" mapstructure:"driver"`

	// DSN is the data source name passed to the driver.
	// For sqlite this is the database file path.
	DSN string `json:"dsn" mapstructure:"dsn"`
}

// AuthConfig holds token and account configuration.
type AuthConfig struct {
	// JWTSecret signs and verifies bearer tokens (HS256).
	JWTSecret string `json:"jwt_secret" mapstructure:"jwt_secret"`

	// TokenTTLHours is the lifetime of issued tokens.
	TokenTTLHours int `json:"token_ttl_hours" mapstructure:"token_ttl_hours"`

	// InitialCredits is the credit balance granted to new accounts.
	InitialCredits int `json:"initial_credits" mapstructure:"initial_credits"`
}

// AIConfig holds AI provider selection and per-provider settings.
type AIConfig struct {
	// Provider selects the active adapter (openai, anthropic, google, mock).
	// The selection is made once per process; when the selected provider has
	// no API key the mock adapter serves instead.
	Provider string `json:"provider" mapstructure:"provider"`

	// RequestTimeoutSeconds bounds each provider HTTP call.
	RequestTimeoutSeconds int `json:"request_timeout_seconds" mapstructure:"request_timeout_seconds"`

	OpenAI    ProviderSettings `json:"openai" mapstructure:"openai"`
	Anthropic ProviderSettings `json:"anthropic" mapstructure:"anthropic"`
	Google    ProviderSettings `json:"google" mapstructure:"google"`
}

// ProviderSettings holds one provider's credential and optional model override.
type ProviderSettings struct {
	// APIKey is the provider credential. Empty means unconfigured.
	APIKey string `json:"api_key" mapstructure:"api_key"`

	// Model overrides the provider's default model name when non-empty.
	Model string `json:"model" mapstructure:"model"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" mapstructure:"level"`

	// Format is the log format (json, text).
	Format string `json:"format" mapstructure:"format"`
}

// configInstance holds the singleton configuration instance.
var (
	configInstance *Configuration
	configOnce     sync.Once
	configErr      error
)

// GetConfig returns the singleton Configuration instance.
// It initializes the configuration on first call using the default config path.
// Returns an error if configuration loading fails.
func GetConfig() (*Configuration, error) {
	configOnce.Do(func() {
		configInstance, configErr = loadConfig("")
	})
	return configInstance, configErr
}

// Load loads a fresh Configuration from the given path, bypassing the
// singleton. Tests use this to build isolated configurations.
func Load(configPath string) (*Configuration, error) {
	return loadConfig(configPath)
}

// ResetConfig resets the singleton instance.
// This is primarily used for testing purposes.
func ResetConfig() {
	configOnce = sync.Once{}
	configInstance = nil
	configErr = nil
}

// Validate validates the configuration and returns an error if required fields are missing.
func (c *Configuration) Validate() error {
	var validationErrors []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		validationErrors = append(validationErrors, "server.port must be between 1 and 65535")
	}

	switch c.Database.Driver {
	case "sqlite", "memory":
	default:
		validationErrors = append(validationErrors, fmt.Sprintf(
			"database.driver '%s' is invalid, must be one of: sqlite, memory",
			c.Database.Driver,
		))
	}

	if c.Database.Driver == "sqlite" && c.Database.DSN == "" {
		validationErrors = append(validationErrors, "database.dsn is required when database.driver is sqlite")
	}

	if c.Auth.JWTSecret == "" {
		validationErrors = append(validationErrors, "auth.jwt_secret is required")
	}

	if c.Auth.TokenTTLHours <= 0 {
		validationErrors = append(validationErrors, "auth.token_ttl_hours must be positive")
	}

	if c.Auth.InitialCredits < 0 {
		validationErrors = append(validationErrors, "auth.initial_credits cannot be negative")
	}

	if !isValidProvider(c.AI.Provider) {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"ai.provider '%s' is invalid, must be one of: openai, anthropic, google, mock",
			c.AI.Provider,
		))
	}

	if c.Logging.Level != "" && !isValidLogLevel(c.Logging.Level) {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.level '%s' is invalid, must be one of: debug, info, warn, error",
			c.Logging.Level,
		))
	}

	if len(validationErrors) > 0 {
		return &ValidationError{Errors: validationErrors}
	}

	return nil
}

// isValidProvider checks if the provider selector is recognized.
func isValidProvider(provider string) bool {
	switch provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderMock:
		return true
	default:
		return false
	}
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// ProviderKey returns the configured API key for the given provider
// selector. The mock provider needs no credential and always returns "".
func (c *Configuration) ProviderKey(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return c.AI.OpenAI.APIKey
	case ProviderAnthropic:
		return c.AI.Anthropic.APIKey
	case ProviderGoogle:
		return c.AI.Google.APIKey
	default:
		return ""
	}
}

// EffectiveProvider returns the provider that will actually serve requests:
// the configured selection, or mock when the selection has no credential.
func (c *Configuration) EffectiveProvider() string {
	if c.AI.Provider == ProviderMock {
		return ProviderMock
	}
	if c.ProviderKey(c.AI.Provider) == "" {
		return ProviderMock
	}
	return c.AI.Provider
}
