package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "LANDWHO"

// newViper builds a Viper instance with the standard settings: YAML files,
// LANDWHO_ env prefix, automatic env binding, and a "." to "_" key replacer
// so that "database.host" resolves to "LANDWHO_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Unmarshal only surfaces env overrides for keys viper already knows, so
	// every configurable key is registered up front.
	for _, key := range knownKeys {
		v.SetDefault(key, nil)
	}
	return v
}

// knownKeys lists every configurable key so environment-only deployments can
// set any of them without a config file.
var knownKeys = []string{
	"server.host", "server.port", "server.read_timeout", "server.write_timeout",
	"server.shutdown_timeout", "server.cors_origins",
	"database.host", "database.port", "database.user", "database.password",
	"database.database", "database.ssl_mode", "database.max_conns",
	"database.min_conns", "database.conn_max_lifetime", "database.migrations_path",
	"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.entry_ttl",
	"kafka.enabled", "kafka.brokers", "kafka.consumer_group",
	"content.endpoint", "content.access_key", "content.secret_key",
	"content.use_ssl", "content.bucket",
	"ledger.rpc_url", "ledger.contract_address", "ledger.private_key",
	"ledger.chain_id", "ledger.confirm_timeout", "ledger.gas_limit",
	"grid.cell_size_meters", "grid.bbox_margin_degrees", "grid.max_cells",
	"mint.max_concurrent", "mint.attempt_timeout",
	"worker.poll_interval",
	"log.level", "log.format", "log.output_paths", "log.error_output_paths",
}

// Load reads the YAML file at configPath, merges LANDWHO_* environment
// overrides, applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from LANDWHO_* environment variables,
// with no config file.  Preferred for containerized deployments.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}
	return cfg, nil
}

// Watch monitors configPath and invokes onChange with each successfully
// reparsed Config.  A change that fails to parse or validate is skipped so
// the application never observes a broken config.  Intended for hot-reload
// of safe settings such as the log level; callers decide which fields to
// apply at runtime.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Callers are expected to have called Load already; ignore errors here.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad wraps Load and panics on error.  For use in main() only.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad: %v", err))
	}
	return cfg
}
