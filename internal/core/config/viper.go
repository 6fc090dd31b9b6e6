package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. FF_SERVER_GRPC_PORT.
const EnvPrefix = "FF"

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence; flags are
// applied by the caller on the returned struct.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching Default
	def := Default()
	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.grpc_port", def.Server.GRPCPort)
	v.SetDefault("server.http_port", def.Server.HTTPPort)
	v.SetDefault("server.request_timeout", def.Server.RequestTimeout.String())
	v.SetDefault("server.max_records", def.Server.MaxRecords)
	v.SetDefault("filter.locale", def.Filter.Locale)
	v.SetDefault("filter.strict_operators", def.Filter.StrictOperators)
	v.SetDefault("cache.max_entries", def.Cache.MaxEntries)
	v.SetDefault("cache.ttl", def.Cache.TTL.String())
	v.SetDefault("database.url", "")

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Checked before env binding so only file contents are inspected
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	// Bind environment variables with FF_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			GRPCPort:       v.GetInt("server.grpc_port"),
			HTTPPort:       v.GetInt("server.http_port"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			MaxRecords:     v.GetInt("server.max_records"),
		},
		Filter: FilterConfig{
			Locale:          v.GetString("filter.locale"),
			StrictOperators: v.GetBool("filter.strict_operators"),
		},
		Cache: CacheConfig{
			MaxEntries: v.GetInt("cache.max_entries"),
			TTL:        v.GetDuration("cache.ttl"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("database.url"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateNoSecretsInConfig keeps database passwords out of config files.
func validateNoSecretsInConfig(v *viper.Viper) error {
	if hasPassword(v.GetString("database.url")) {
		return fmt.Errorf("database passwords not allowed in config files (use %s_DATABASE_URL environment variable)", EnvPrefix)
	}
	return nil
}
