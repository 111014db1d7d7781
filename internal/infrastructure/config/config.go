package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream" mapstructure:"upstream"`
	Tracker   TrackerConfig   `yaml:"tracker" mapstructure:"tracker"`
	Mirror    MirrorConfig    `yaml:"mirror" mapstructure:"mirror"`
	Auth      AuthConfig      `yaml:"auth" mapstructure:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" mapstructure:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// UpstreamConfig contains the ticker API client configuration
type UpstreamConfig struct {
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey     string        `yaml:"api_key" mapstructure:"api_key"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxRetries int           `yaml:"max_retries" mapstructure:"max_retries"`
	Shape      string        `yaml:"shape" mapstructure:"shape"`
	Mock       bool          `yaml:"mock" mapstructure:"mock"` // precios sintéticos, sin API key
}

// TrackerConfig contains what is tracked and how often it is refreshed
type TrackerConfig struct {
	IDs              []string      `yaml:"ids" mapstructure:"ids"`
	Currency         string        `yaml:"currency" mapstructure:"currency"`
	ThrottleInterval time.Duration `yaml:"throttle_interval" mapstructure:"throttle_interval"`
	PollInterval     time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	StaleAfter       time.Duration `yaml:"stale_after" mapstructure:"stale_after"`
}

// MirrorConfig contains the snapshot mirror backend configuration
type MirrorConfig struct {
	Backend   string        `yaml:"backend" mapstructure:"backend"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	KeyPrefix string        `yaml:"key_prefix" mapstructure:"key_prefix"`
	Redis     RedisConfig   `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig contains Redis-specific configuration
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// AuthConfig protects the write endpoints with a static API key
type AuthConfig struct {
	Enabled        bool     `yaml:"enabled" mapstructure:"enabled"`
	APIKey         string   `yaml:"api_key" mapstructure:"api_key"`
	HeaderName     string   `yaml:"header_name" mapstructure:"header_name"`
	ProtectedPaths []string `yaml:"protected_paths" mapstructure:"protected_paths"`
}

// RateLimitConfig contains the per-client inbound rate limit
type RateLimitConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"`
	Capacity   int  `yaml:"capacity" mapstructure:"capacity"`
	RefillRate int  `yaml:"refill_rate" mapstructure:"refill_rate"` // tokens por segundo
}

// LoggingConfig contains logging system configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"` // stdout | stderr
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 30 * time.Second,
		},
		Upstream: UpstreamConfig{
			BaseURL:    "https://api.nomics.com/v1",
			APIKey:     "",
			Timeout:    10 * time.Second,
			MaxRetries: 3,
			Shape:      "ticker",
			Mock:       false,
		},
		Tracker: TrackerConfig{
			IDs:              []string{"BTC", "ETH"},
			Currency:         "usd",
			ThrottleInterval: 60 * time.Minute,
			PollInterval:     time.Minute,
			StaleAfter:       0, // nunca marca datos como no disponibles
		},
		Mirror: MirrorConfig{
			Backend:   "none",
			TTL:       2 * time.Hour,
			KeyPrefix: "ticker:",
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				Password: "",
				DB:       0,
			},
		},
		Auth: AuthConfig{
			Enabled:        false,
			APIKey:         "",
			HeaderName:     "X-API-Key",
			ProtectedPaths: []string{"/api/v1/refresh"},
		},
		RateLimit: RateLimitConfig{
			Enabled:    true,
			Capacity:   60,
			RefillRate: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}
