package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	validShapes   = []string{"ticker", "supply"}
	validBackends = []string{"none", "memory", "redis"}
)

// Validator valida la configuración cargada
type Validator struct{}

// NewValidator crea una nueva instancia del validador
func NewValidator() *Validator {
	return &Validator{}
}

// Validate valida toda la configuración
func (v *Validator) Validate(config *Config) error {
	if err := v.validateServer(config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := v.validateUpstream(config.Upstream); err != nil {
		return fmt.Errorf("upstream config validation failed: %w", err)
	}

	if err := v.validateTracker(config.Tracker); err != nil {
		return fmt.Errorf("tracker config validation failed: %w", err)
	}

	if err := v.validateMirror(config.Mirror); err != nil {
		return fmt.Errorf("mirror config validation failed: %w", err)
	}

	if err := v.validateAuth(config.Auth); err != nil {
		return fmt.Errorf("auth config validation failed: %w", err)
	}

	if err := v.validateRateLimit(config.RateLimit); err != nil {
		return fmt.Errorf("rate limit config validation failed: %w", err)
	}

	if err := v.validateLogging(config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	return nil
}

func (v *Validator) validateServer(config ServerConfig) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port: %d, must be between 1-65535", config.Port)
	}

	if config.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got: %v", config.ShutdownTimeout)
	}

	if config.ShutdownTimeout > 5*time.Minute {
		return fmt.Errorf("shutdown_timeout too long: %v, max 5 minutes", config.ShutdownTimeout)
	}

	return nil
}

func (v *Validator) validateUpstream(config UpstreamConfig) error {
	if err := v.validateURL(config.BaseURL, "upstream base_url"); err != nil {
		return err
	}

	if !config.Mock && strings.TrimSpace(config.APIKey) == "" {
		return fmt.Errorf("upstream api_key cannot be empty")
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got: %v", config.Timeout)
	}

	if config.MaxRetries < 1 || config.MaxRetries > 10 {
		return fmt.Errorf("upstream max_retries must be between 1-10, got: %d", config.MaxRetries)
	}

	if !contains(validShapes, config.Shape) {
		return fmt.Errorf("invalid upstream shape: %s, must be one of: %v", config.Shape, validShapes)
	}

	return nil
}

func (v *Validator) validateTracker(config TrackerConfig) error {
	if len(config.IDs) == 0 {
		return fmt.Errorf("ids cannot be empty")
	}

	for _, id := range config.IDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("ids cannot contain blank entries")
		}
		if strings.Contains(id, ",") {
			return fmt.Errorf("invalid id: %q, must not contain commas", id)
		}
	}

	if strings.TrimSpace(config.Currency) == "" {
		return fmt.Errorf("currency cannot be empty")
	}

	if config.ThrottleInterval <= 0 {
		return fmt.Errorf("throttle_interval must be positive, got: %v", config.ThrottleInterval)
	}

	if config.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got: %v", config.PollInterval)
	}

	if config.StaleAfter < 0 {
		return fmt.Errorf("stale_after cannot be negative, got: %v", config.StaleAfter)
	}

	if config.StaleAfter > 0 && config.StaleAfter < config.ThrottleInterval {
		return fmt.Errorf("stale_after (%v) must not be shorter than throttle_interval (%v)", config.StaleAfter, config.ThrottleInterval)
	}

	return nil
}

func (v *Validator) validateMirror(config MirrorConfig) error {
	if !contains(validBackends, config.Backend) {
		return fmt.Errorf("invalid mirror backend: %s, must be one of: %v", config.Backend, validBackends)
	}

	if strings.EqualFold(config.Backend, "none") {
		return nil
	}

	if config.TTL < 0 {
		return fmt.Errorf("mirror TTL cannot be negative, got: %v", config.TTL)
	}

	if config.KeyPrefix == "" {
		return fmt.Errorf("key_prefix cannot be empty")
	}

	if strings.EqualFold(config.Backend, "redis") {
		if err := v.validateRedis(config.Redis); err != nil {
			return err
		}
	}

	return nil
}

func (v *Validator) validateRedis(config RedisConfig) error {
	if config.Addr == "" {
		return fmt.Errorf("redis addr cannot be empty")
	}

	if !strings.Contains(config.Addr, ":") {
		return fmt.Errorf("invalid redis addr format: %s, expected host:port", config.Addr)
	}

	if config.DB < 0 || config.DB > 15 {
		return fmt.Errorf("invalid redis DB: %d, must be between 0-15", config.DB)
	}

	return nil
}

func (v *Validator) validateAuth(config AuthConfig) error {
	if !config.Enabled {
		return nil
	}

	if len(config.APIKey) < 16 {
		return fmt.Errorf("auth api_key must be at least 16 characters when enabled")
	}

	if strings.TrimSpace(config.HeaderName) == "" {
		return fmt.Errorf("auth header_name cannot be empty")
	}

	for _, p := range config.ProtectedPaths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("invalid protected path: %q, must start with /", p)
		}
	}

	return nil
}

func (v *Validator) validateRateLimit(config RateLimitConfig) error {
	if !config.Enabled {
		return nil
	}

	if config.Capacity <= 0 {
		return fmt.Errorf("rate limit capacity must be positive, got: %d", config.Capacity)
	}

	if config.RefillRate <= 0 {
		return fmt.Errorf("rate limit refill_rate must be positive, got: %d", config.RefillRate)
	}

	return nil
}

func (v *Validator) validateLogging(config LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, config.Level) {
		return fmt.Errorf("invalid log level: %s, must be one of: %v", config.Level, validLevels)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, config.Format) {
		return fmt.Errorf("invalid log format: %s, must be one of: %v", config.Format, validFormats)
	}

	validOutputs := []string{"stdout", "stderr"}
	if !contains(validOutputs, config.Output) {
		return fmt.Errorf("invalid log output: %s, must be one of: %v", config.Output, validOutputs)
	}

	return nil
}

// validateURL valida que una URL sea válida para HTTP/HTTPS
func (v *Validator) validateURL(rawURL, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %s, error: %v", fieldName, rawURL, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid %s scheme: %s, must be http or https", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s must have a host", fieldName)
	}

	return nil
}

// contains verifica si un slice contiene un elemento
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
