// Package config provides configuration management for the authentication
// comparison service.
//
// Configuration is loaded in the following order (later sources override
// earlier ones):
//  1. Default values (SetConfigDefaults)
//  2. Configuration files (./config.yaml, ./configs/config.yaml, ~/.authsvc/config.yaml, /etc/authsvc/config.yaml)
//  3. .env files
//  4. Environment variables (prefix AUTHSVC_)
//
// Environment variables use underscores for nested keys:
//   - AUTHSVC_SERVER_PORT=3000
//   - AUTHSVC_REDIS_URL=redis://localhost:6379/0
//   - AUTHSVC_AUTH_STRATEGY=token
//   - AUTHSVC_AUTH_JWT_SECRET=...
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"authbench.evalgo.org/auth"
)

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Host is the server bind address (default: 0.0.0.0)
	Host string `mapstructure:"host"`

	// Port is the server listen port (default: 3000)
	Port int `mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading requests
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration for writing responses
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Debug enables debug logging and additional endpoints
	Debug bool `mapstructure:"debug"`

	// RateLimit is the maximum requests per second per instance (0 = no limit)
	RateLimit float64 `mapstructure:"rate_limit"`
}

// RedisConfig contains key-value store connection settings.
type RedisConfig struct {
	// URL is the Redis server URL (e.g. redis://localhost:6379/0)
	URL string `mapstructure:"url"`

	// KeyPrefix is prepended to every key the service writes
	KeyPrefix string `mapstructure:"key_prefix"`
}

// AuthConfig contains authentication core settings.
type AuthConfig struct {
	// Strategy selects the authentication scheme: "session" or "token"
	Strategy string `mapstructure:"strategy"`

	// JWTSecret is the process-wide token signing secret (token strategy)
	JWTSecret string `mapstructure:"jwt_secret"`

	// SessionTTL is the lifetime of issued sessions
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	// TokenTTL is the lifetime of issued tokens
	TokenTTL time.Duration `mapstructure:"token_ttl"`

	// BcryptCost is the bcrypt cost factor for password hashing
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level"`

	// Format is the log format (json, text)
	Format string `mapstructure:"format"`
}

// ServiceConfig contains service metadata.
type ServiceConfig struct {
	// Name is the service name
	Name string `mapstructure:"name"`

	// Environment is the deployment environment (development, staging, production)
	Environment string `mapstructure:"environment"`
}

// Config is the complete service configuration.
type Config struct {
	Service ServiceConfig `mapstructure:"service"`
	Server  ServerConfig  `mapstructure:"server"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// AuthCoreConfig converts the auth section into the core's config type.
func (c *Config) AuthCoreConfig() *auth.Config {
	return &auth.Config{
		Strategy:   c.Auth.Strategy,
		JWTSecret:  c.Auth.JWTSecret,
		SessionTTL: c.Auth.SessionTTL,
		TokenTTL:   c.Auth.TokenTTL,
		BcryptCost: c.Auth.BcryptCost,
	}
}

// Loader provides configuration loading functionality.
type Loader struct {
	v      *viper.Viper
	prefix string
}

// NewLoader creates a new configuration loader with the given environment prefix.
func NewLoader(envPrefix string) *Loader {
	return &Loader{
		v:      viper.New(),
		prefix: envPrefix,
	}
}

// SetDefaults sets default configuration values.
// This should be called before Load().
func (l *Loader) SetDefaults(defaults map[string]interface{}) {
	for key, value := range defaults {
		l.v.SetDefault(key, value)
	}
}

// SetConfigDefaults sets standard service defaults.
func (l *Loader) SetConfigDefaults() {
	l.v.SetDefault("service.name", "authservice")
	l.v.SetDefault("service.environment", "development")

	l.v.SetDefault("server.host", "0.0.0.0")
	l.v.SetDefault("server.port", 3000)
	l.v.SetDefault("server.read_timeout", "30s")
	l.v.SetDefault("server.write_timeout", "30s")
	l.v.SetDefault("server.shutdown_timeout", "10s")
	l.v.SetDefault("server.debug", false)
	l.v.SetDefault("server.rate_limit", 0)

	l.v.SetDefault("redis.url", "redis://localhost:6379/0")
	l.v.SetDefault("redis.key_prefix", "authsvc:")

	l.v.SetDefault("auth.strategy", auth.StrategySession)
	l.v.SetDefault("auth.jwt_secret", "")
	l.v.SetDefault("auth.session_ttl", "1h")
	l.v.SetDefault("auth.token_ttl", "1h")
	l.v.SetDefault("auth.bcrypt_cost", auth.DefaultBcryptCost)

	l.v.SetDefault("logging.level", "info")
	l.v.SetDefault("logging.format", "text")
}

// Load reads configuration from file, .env, and environment variables.
// If cfgFile is empty, searches for config.yaml in standard locations.
func (l *Loader) Load(cfgFile string, target interface{}) error {
	if cfgFile != "" {
		l.v.SetConfigFile(cfgFile)
	} else {
		l.v.SetConfigName("config")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath("./configs")
		l.v.AddConfigPath("$HOME/.authsvc")
		l.v.AddConfigPath("/etc/authsvc")
	}

	if err := l.v.ReadInConfig(); err != nil {
		// Only fail on non-NotFound errors for explicit file paths
		if cfgFile != "" && !isFileNotFoundError(err) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		if cfgFile == "" {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// Merge .env file if present
	l.v.SetConfigFile(".env")
	l.v.SetConfigType("env")
	_ = l.v.MergeInConfig() // Ignore if .env doesn't exist

	if l.prefix != "" {
		l.v.SetEnvPrefix(l.prefix)
	}
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if err := l.v.Unmarshal(target); err != nil {
		return fmt.Errorf("unable to decode config: %w", err)
	}

	return nil
}

// LoadConfig is a convenience function that loads configuration with
// standard defaults and validates the result.
func LoadConfig(envPrefix, cfgFile string) (*Config, error) {
	loader := NewLoader(envPrefix)
	loader.SetConfigDefaults()

	cfg := &Config{}
	if err := loader.Load(cfgFile, cfg); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ValidateConfig validates the loaded configuration.
func ValidateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	switch cfg.Auth.Strategy {
	case auth.StrategySession, auth.StrategyToken:
	default:
		return fmt.Errorf("invalid auth strategy: %q", cfg.Auth.Strategy)
	}

	if cfg.Auth.Strategy == auth.StrategyToken && cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required for the token strategy")
	}

	if cfg.Auth.SessionTTL <= 0 || cfg.Auth.TokenTTL <= 0 {
		return fmt.Errorf("session and token TTLs must be positive")
	}

	return nil
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
