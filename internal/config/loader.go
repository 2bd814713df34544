// Package config provides configuration management using the Singleton pattern.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultConfigName = "config"
	defaultConfigType = "yaml"
	envPrefix         = "ORBIT"

	// Conventional provider credential variables. These take PRIORITY over
	// file configuration so that keys never need to live on disk.
	EnvAIProvider   = "AI_PROVIDER"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvOpenAIModel  = "OPENAI_MODEL"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvAnthropicMod = "ANTHROPIC_MODEL"
	EnvGoogleKey    = "GOOGLE_API_KEY"
	EnvGoogleModel  = "GOOGLE_MODEL"
)

// loadConfig loads the configuration from environment variables and files.
// Priority order (highest to lowest):
// 1. Conventional env vars (AI_PROVIDER, OPENAI_API_KEY, ...)
// 2. Environment variables prefixed with ORBIT_
// 3. config.yaml — fallback for local development
// 4. Default values
func loadConfig(configPath string) (*Configuration, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure Viper
	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)

	// Add config search paths
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/orbit-chat")
		v.AddConfigPath("$HOME/.orbit-chat")
	}

	// Enable environment variable override
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Read configuration file (fallback only)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &ConfigError{
				Op:  "read",
				Err: fmt.Errorf("failed to read config file: %w", err),
			}
		}
		// Config file not found is OK — env vars and defaults suffice.
	}

	// Unmarshal configuration
	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{
			Op:  "unmarshal",
			Err: fmt.Errorf("failed to unmarshal config: %w", err),
		}
	}

	// Overlay conventional env vars last so they win over file config.
	applyProviderEnv(&cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "orbit-chat.db")

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl_hours", 24)
	v.SetDefault("auth.initial_credits", 100)

	// AI defaults
	v.SetDefault("ai.provider", ProviderOpenAI)
	v.SetDefault("ai.request_timeout_seconds", 30)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// applyProviderEnv overlays the conventional provider env vars onto cfg.
// Only non-empty values override.
func applyProviderEnv(cfg *Configuration) {
	if p := strings.ToLower(strings.TrimSpace(os.Getenv(EnvAIProvider))); p != "" {
		cfg.AI.Provider = p
	}
	if k := os.Getenv(EnvOpenAIKey); k != "" {
		cfg.AI.OpenAI.APIKey = k
	}
	if m := os.Getenv(EnvOpenAIModel); m != "" {
		cfg.AI.OpenAI.Model = m
	}
	if k := os.Getenv(EnvAnthropicKey); k != "" {
		cfg.AI.Anthropic.APIKey = k
	}
	if m := os.Getenv(EnvAnthropicMod); m != "" {
		cfg.AI.Anthropic.Model = m
	}
	if k := os.Getenv(EnvGoogleKey); k != "" {
		cfg.AI.Google.APIKey = k
	}
	if m := os.Getenv(EnvGoogleModel); m != "" {
		cfg.AI.Google.Model = m
	}
}
