package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	App       AppConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" required:"true"`
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	BaseURL         string        `envconfig:"SERVER_BASE_URL"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
	AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("base URL must be an absolute http(s) URL, got %q", c.BaseURL)
		}
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	URL              string        `envconfig:"DATABASE_URL" required:"true"`
	SSL              bool          `envconfig:"DB_SSL" default:"false"`
	MaxConns         int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns         int32         `envconfig:"DB_MIN_CONNS" default:"0"`
	ConnectTimeout   time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`
	StatementTimeout time.Duration `envconfig:"DB_STATEMENT_TIMEOUT" default:"5s"`
	AutoMigrate      bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("database URL cannot be empty")
	}
	if c.MaxConns <= 0 {
		return fmt.Errorf("max connections must be positive")
	}
	if c.MinConns < 0 {
		return fmt.Errorf("min connections cannot be negative")
	}
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("min connections (%d) cannot be greater than max connections (%d)", c.MinConns, c.MaxConns)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}
	if c.StatementTimeout < 0 {
		return fmt.Errorf("statement timeout cannot be negative")
	}
	if mode := c.sslMode(); c.SSL && weakSSLModes[mode] {
		return fmt.Errorf("DB_SSL is set but the database URL has sslmode=%s", mode)
	}
	return nil
}

// weakSSLModes allow a plaintext connection.
var weakSSLModes = map[string]bool{
	"disable": true,
	"allow":   true,
	"prefer":  true,
}

var sslModePattern = regexp.MustCompile(`sslmode=([A-Za-z-]+)`)

// sslMode returns the sslmode named in the URL, or "" when none is.
func (c *DatabaseConfig) sslMode() string {
	m := sslModePattern.FindStringSubmatch(c.URL)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// ConnectionString returns the PostgreSQL connection string. With SSL set,
// sslmode=require is added unless the URL already names a mode.
func (c *DatabaseConfig) ConnectionString() string {
	if !c.SSL || c.sslMode() != "" {
		return c.URL
	}

	if !strings.Contains(c.URL, "://") {
		return c.URL + " sslmode=require"
	}
	sep := "?"
	if strings.Contains(c.URL, "?") {
		sep = "&"
	}
	return c.URL + sep + "sslmode=require"
}

// AppConfig holds application-specific configuration.
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"` // development, staging, production, test
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`      // debug, info, warn, error
	Version     string `envconfig:"APP_VERSION" default:"dev"`
}

// Validate validates the app configuration.
func (c *AppConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Environment)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// RateLimitConfig limits link creation per client IP. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
	Burst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`
}

// Enabled reports whether requests should be limited.
func (c *RateLimitConfig) Enabled() bool {
	return c.RPS > 0
}

// Validate validates the rate limit configuration.
func (c *RateLimitConfig) Validate() error {
	if c.RPS < 0 {
		return fmt.Errorf("rate limit rps cannot be negative")
	}
	if c.Enabled() && c.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be positive when rate limiting is enabled")
	}
	return nil
}

// LoadDatabase loads only the Database and App sections, for commands that
// talk to the store but never listen.
func LoadDatabase() (*Config, error) {
	cfg := &Config{}
	if err := loadDatabase(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDatabase(cfg *Config) error {
	if err := envconfig.Process("", &cfg.Database); err != nil {
		return fmt.Errorf("failed to load Database config: %w", err)
	}
	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("invalid Database config: %w", err)
	}

	if err := envconfig.Process("", &cfg.App); err != nil {
		return fmt.Errorf("failed to load App config: %w", err)
	}
	if err := cfg.App.Validate(); err != nil {
		return fmt.Errorf("invalid App config: %w", err)
	}
	return nil
}

// Load loads configuration from environment variables only.
// (Do .env loading in internal/app for dev, not here.)
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load Server config: %w", err)
	}
	if err := cfg.Server.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Server config: %w", err)
	}

	if err := loadDatabase(cfg); err != nil {
		return nil, err
	}

	if err := envconfig.Process("", &cfg.RateLimit); err != nil {
		return nil, fmt.Errorf("failed to load RateLimit config: %w", err)
	}
	if err := cfg.RateLimit.Validate(); err != nil {
		return nil, fmt.Errorf("invalid RateLimit config: %w", err)
	}

	return cfg, nil
}
