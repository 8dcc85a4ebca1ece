// Package config provides centralized configuration for the geocoding server.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/NERVsystems/geocodemcp/pkg/osm"
	"github.com/NERVsystems/geocodemcp/pkg/version"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// GEOCODE_NOMINATIM_TIMEOUT for nominatim.timeout.
const EnvPrefix = "GEOCODE"

// Log formats understood by the server.
const (
	LogFormatText   = "text"
	LogFormatJSON   = "json"
	LogFormatPretty = "pretty"
)

// Config holds the complete configuration for the server
type Config struct {
	Nominatim struct {
		BaseURL   string
		UserAgent string
		Timeout   time.Duration
		RateLimit float64
		Burst     int
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from defaults, a .env file in the working
// directory, GEOCODE_* environment variables and, when path is non-empty,
// a config file (any format viper understands).
func Load(path string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	cfg.Nominatim.BaseURL = v.GetString("nominatim.base_url")
	cfg.Nominatim.UserAgent = v.GetString("nominatim.user_agent")
	cfg.Nominatim.Timeout = v.GetDuration("nominatim.timeout")
	cfg.Nominatim.RateLimit = v.GetFloat64("nominatim.rate_limit")
	cfg.Nominatim.Burst = v.GetInt("nominatim.burst")
	cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	cfg.Log.Format = strings.ToLower(v.GetString("log.format"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("nominatim.base_url", osm.NominatimBaseURL)
	v.SetDefault("nominatim.user_agent", version.UserAgent())
	v.SetDefault("nominatim.timeout", osm.DefaultTimeout)
	v.SetDefault("nominatim.rate_limit", osm.DefaultRequestsPerSecond)
	v.SetDefault("nominatim.burst", osm.DefaultBurst)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", LogFormatText)
}

// Validate checks that all configuration values are usable
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Nominatim.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("nominatim.base_url %q is not an absolute URL", c.Nominatim.BaseURL))
	}
	if strings.TrimSpace(c.Nominatim.UserAgent) == "" {
		errs = append(errs, errors.New("nominatim.user_agent must not be empty"))
	}
	if c.Nominatim.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("nominatim.timeout must be positive, got %s", c.Nominatim.Timeout))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case LogFormatText, LogFormatJSON, LogFormatPretty:
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be one of text, json, pretty", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q is not a valid level", level)
	}
	return l, nil
}

// NominatimOptions converts the configuration into client options.
func (c *Config) NominatimOptions(logger *slog.Logger) osm.Options {
	return osm.Options{
		BaseURL:           c.Nominatim.BaseURL,
		UserAgent:         c.Nominatim.UserAgent,
		Timeout:           c.Nominatim.Timeout,
		RequestsPerSecond: c.Nominatim.RateLimit,
		Burst:             c.Nominatim.Burst,
		Logger:            logger,
	}
}
