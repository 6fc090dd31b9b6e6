// Package config provides configuration management for fieldfilter services.
package config

import (
	"fmt"
	"net/url"
	"time"

	"golang.org/x/text/language"
)

// Config is the complete runtime configuration.
type Config struct {
	Server   ServerConfig
	Filter   FilterConfig
	Cache    CacheConfig
	Database DatabaseConfig
}

// ServerConfig holds configuration for the gRPC and HTTP query endpoints.
type ServerConfig struct {
	Host           string
	GRPCPort       int
	HTTPPort       int // 0 disables the HTTP listener
	RequestTimeout time.Duration
	MaxRecords     int // cap on inline records per request
}

// FilterConfig holds engine behaviour settings.
type FilterConfig struct {
	Locale          string
	StrictOperators bool // reject invalid conditions instead of logging them
}

// CacheConfig holds result cache sizing.
type CacheConfig struct {
	MaxEntries int // 0 disables caching
	TTL        time.Duration
}

// DatabaseConfig holds the dataset store location.
type DatabaseConfig struct {
	URL string
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			GRPCPort:       50051,
			HTTPPort:       8080,
			RequestTimeout: 30 * time.Second,
			MaxRecords:     10000,
		},
		Filter: FilterConfig{
			Locale: "en",
		},
		Cache: CacheConfig{
			MaxEntries: 256,
			TTL:        5 * time.Minute,
		},
	}
}

// LocaleTag parses the configured collation locale.
func (c FilterConfig) LocaleTag() (language.Tag, error) {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, fmt.Errorf("filter.locale %q: %w", c.Locale, err)
	}
	return tag, nil
}

// Validate checks port ranges, positive limits and the locale.
func (c *Config) Validate() error {
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("server.grpc_port must be between 1 and 65535, got %d", c.Server.GRPCPort)
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be between 0 and 65535, got %d", c.Server.HTTPPort)
	}
	if c.Server.HTTPPort != 0 && c.Server.HTTPPort == c.Server.GRPCPort {
		return fmt.Errorf("server.http_port and server.grpc_port must differ, both %d", c.Server.GRPCPort)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive, got %v", c.Server.RequestTimeout)
	}
	if c.Server.MaxRecords <= 0 {
		return fmt.Errorf("server.max_records must be positive, got %d", c.Server.MaxRecords)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %v", c.Cache.TTL)
	}
	if _, err := c.Filter.LocaleTag(); err != nil {
		return err
	}
	return nil
}

// hasPassword reports whether a database URL embeds a password.
func hasPassword(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return false
	}
	_, ok := u.User.Password()
	return ok
}
