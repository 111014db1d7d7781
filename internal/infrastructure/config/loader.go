package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading using Viper
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader instance
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// Load loads configuration from files and environment variables
func (l *Loader) Load() (*Config, error) {
	l.setupViper()

	if err := l.v.ReadInConfig(); err != nil {
		// Sin config.yaml se usan defaults y env vars
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := GetDefaultConfig()
	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	l.overrideWithEnvVars(config)
	return config, nil
}

// LoadFile loads configuration from an explicit file path plus env vars
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.setupViper()
	l.v.SetConfigFile(path)

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := GetDefaultConfig()
	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	l.overrideWithEnvVars(config)
	return config, nil
}

func (l *Loader) setupViper() {
	l.v.SetConfigName("config")
	l.v.SetConfigType("yaml")

	l.v.AddConfigPath("./configs")
	l.v.AddConfigPath("../configs")
	l.v.AddConfigPath(".")
	l.v.AddConfigPath("/etc/ticker-cache")

	// TICKER_UPSTREAM_API_KEY, TICKER_TRACKER_THROTTLE_INTERVAL, ...
	l.v.SetEnvPrefix("TICKER")
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	l.bindDefaults()
	l.bindEnvVars()
}

// bindDefaults registra cada clave para que AutomaticEnv la resuelva en Unmarshal
func (l *Loader) bindDefaults() {
	d := GetDefaultConfig()
	defaults := map[string]any{
		"server.port":               d.Server.Port,
		"server.shutdown_timeout":   d.Server.ShutdownTimeout,
		"upstream.base_url":         d.Upstream.BaseURL,
		"upstream.api_key":          d.Upstream.APIKey,
		"upstream.timeout":          d.Upstream.Timeout,
		"upstream.max_retries":      d.Upstream.MaxRetries,
		"upstream.shape":            d.Upstream.Shape,
		"upstream.mock":             d.Upstream.Mock,
		"tracker.ids":               d.Tracker.IDs,
		"tracker.currency":          d.Tracker.Currency,
		"tracker.throttle_interval": d.Tracker.ThrottleInterval,
		"tracker.poll_interval":     d.Tracker.PollInterval,
		"tracker.stale_after":       d.Tracker.StaleAfter,
		"mirror.backend":            d.Mirror.Backend,
		"mirror.ttl":                d.Mirror.TTL,
		"mirror.key_prefix":         d.Mirror.KeyPrefix,
		"mirror.redis.addr":         d.Mirror.Redis.Addr,
		"mirror.redis.password":     d.Mirror.Redis.Password,
		"mirror.redis.db":           d.Mirror.Redis.DB,
		"auth.enabled":              d.Auth.Enabled,
		"auth.api_key":              d.Auth.APIKey,
		"auth.header_name":          d.Auth.HeaderName,
		"auth.protected_paths":      d.Auth.ProtectedPaths,
		"rate_limit.enabled":        d.RateLimit.Enabled,
		"rate_limit.capacity":       d.RateLimit.Capacity,
		"rate_limit.refill_rate":    d.RateLimit.RefillRate,
		"logging.level":             d.Logging.Level,
		"logging.format":            d.Logging.Format,
		"logging.output":            d.Logging.Output,
	}
	for key, value := range defaults {
		l.v.SetDefault(key, value)
	}
}

// bindEnvVars maps the short env var names used in deployments
func (l *Loader) bindEnvVars() {
	envMappings := map[string]string{
		"server.port":               "PORT",
		"upstream.api_key":          "NOMICS_API_KEY",
		"upstream.base_url":         "NOMICS_BASE_URL",
		"tracker.currency":          "TICKER_CURRENCY",
		"tracker.throttle_interval": "THROTTLE_INTERVAL",
		"mirror.backend":            "MIRROR_BACKEND",
		"mirror.redis.addr":         "REDIS_ADDR",
		"mirror.redis.password":     "REDIS_PASSWORD",
		"mirror.redis.db":           "REDIS_DB",
		"auth.enabled":              "AUTH_ENABLED",
		"auth.api_key":              "ADMIN_API_KEY",
		"upstream.mock":             "MOCK_MODE",
		"rate_limit.enabled":        "RATE_LIMIT_ENABLED",
		"rate_limit.capacity":       "RATE_LIMIT_CAPACITY",
		"rate_limit.refill_rate":    "RATE_LIMIT_REFILL_RATE",
		"logging.level":             "LOG_LEVEL",
		"logging.format":            "LOG_FORMAT",
		"logging.output":            "LOG_OUTPUT",
	}

	for configKey, envVar := range envMappings {
		_ = l.v.BindEnv(configKey, "TICKER_"+strings.ToUpper(strings.ReplaceAll(configKey, ".", "_")), envVar)
	}
}

// overrideWithEnvVars maneja TRACKED_IDS como lista separada por comas
func (l *Loader) overrideWithEnvVars(config *Config) {
	raw := os.Getenv("TICKER_TRACKER_IDS")
	if raw == "" {
		raw = os.Getenv("TRACKED_IDS")
	}
	if raw != "" {
		if ids := SplitList(raw); len(ids) > 0 {
			config.Tracker.IDs = ids
		}
	}
}

// SplitList splits a comma separated list, dropping blanks
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetEnvironment determina el entorno actual desde ENV vars
func GetEnvironment() string {
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		env = strings.ToLower(os.Getenv("ENVIRONMENT"))
	}
	if env == "" {
		env = "development"
	}
	return env
}
