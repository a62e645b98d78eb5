// Package config provides configuration loading, defaults and validation for
// the LandWho services.
package config

import (
	"fmt"
	"time"

	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
)

// Config is the root configuration shared by the API server and the worker.
type Config struct {
	Server   ServerConfig      `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig    `mapstructure:"database" yaml:"database"`
	Redis    RedisConfig       `mapstructure:"redis" yaml:"redis"`
	Kafka    KafkaConfig       `mapstructure:"kafka" yaml:"kafka"`
	Content  ContentConfig     `mapstructure:"content" yaml:"content"`
	Ledger   LedgerConfig      `mapstructure:"ledger" yaml:"ledger"`
	Grid     GridConfig        `mapstructure:"grid" yaml:"grid"`
	Mint     MintConfig        `mapstructure:"mint" yaml:"mint"`
	Worker   WorkerConfig      `mapstructure:"worker" yaml:"worker"`
	Log      logging.LogConfig `mapstructure:"log" yaml:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	// CORSOrigins lists the origins allowed by the CORS middleware.  An empty
	// list allows any origin, which is only acceptable in development.
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	User            string        `mapstructure:"user" yaml:"user"`
	Password        string        `mapstructure:"password" yaml:"password"`
	Database        string        `mapstructure:"database" yaml:"database"`
	SSLMode         string        `mapstructure:"ssl_mode" yaml:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns" yaml:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns" yaml:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path" yaml:"migrations_path"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// RedisConfig holds Redis connection settings for the distributed in-flight
// registry.  Redis is optional; when Enabled is false the in-memory registry
// is used instead.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	// EntryTTL bounds how long an in-flight claim survives a crashed process.
	EntryTTL time.Duration `mapstructure:"entry_ttl" yaml:"entry_ttl"`
}

// KafkaConfig holds producer and consumer settings for mint lifecycle events.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	Brokers []string `mapstructure:"brokers" yaml:"brokers"`
	// ConsumerGroup is the group id used by the reconciliation worker.
	ConsumerGroup string `mapstructure:"consumer_group" yaml:"consumer_group"`
}

// ContentConfig holds the MinIO content-store settings used for pinning
// parcel metadata before minting.
type ContentConfig struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
}

// LedgerConfig holds the blockchain endpoint and signing settings.
type LedgerConfig struct {
	RPCURL          string `mapstructure:"rpc_url" yaml:"rpc_url"`
	ContractAddress string `mapstructure:"contract_address" yaml:"contract_address"`
	PrivateKey      string `mapstructure:"private_key" yaml:"private_key"`
	ChainID         int64  `mapstructure:"chain_id" yaml:"chain_id"`
	// ConfirmTimeout bounds the wait for transaction confirmation.  A timeout
	// is its own failure kind because the transaction may still land after
	// the deadline.
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout" yaml:"confirm_timeout"`
	GasLimit       uint64        `mapstructure:"gas_limit" yaml:"gas_limit"`
}

// GridConfig holds parcel-grid generation settings.
type GridConfig struct {
	// CellSizeMeters is the square parcel edge length.
	CellSizeMeters float64 `mapstructure:"cell_size_meters" yaml:"cell_size_meters"`
	// BBoxMarginDegrees expands the land's bounding box before gridding so
	// boundary parcels are not clipped away.
	BBoxMarginDegrees float64 `mapstructure:"bbox_margin_degrees" yaml:"bbox_margin_degrees"`
	// MaxCells caps the candidate grid so pathological inputs cannot exhaust
	// memory.
	MaxCells int `mapstructure:"max_cells" yaml:"max_cells"`
}

// MintConfig holds mint-coordination settings.
type MintConfig struct {
	// MaxConcurrent caps the number of mint attempts running at once.
	MaxConcurrent int `mapstructure:"max_concurrent" yaml:"max_concurrent"`
	// AttemptTimeout bounds a whole mint attempt, pin through persistence.
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout" yaml:"attempt_timeout"`
}

// WorkerConfig holds settings for the reconciliation worker.
type WorkerConfig struct {
	// PollInterval is the idle sleep between consume loops when the broker
	// has nothing to deliver.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// Validate checks the configuration for values that would prevent the
// service from operating.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host must not be empty")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database.database must not be empty")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr must not be empty when redis is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers must not be empty when kafka is enabled")
	}
	if c.Grid.CellSizeMeters <= 0 {
		return fmt.Errorf("grid.cell_size_meters must be positive, got %v", c.Grid.CellSizeMeters)
	}
	if c.Grid.MaxCells <= 0 {
		return fmt.Errorf("grid.max_cells must be positive, got %d", c.Grid.MaxCells)
	}
	if c.Mint.MaxConcurrent <= 0 {
		return fmt.Errorf("mint.max_concurrent must be positive, got %d", c.Mint.MaxConcurrent)
	}
	if c.Ledger.ConfirmTimeout <= 0 {
		return fmt.Errorf("ledger.confirm_timeout must be positive, got %v", c.Ledger.ConfirmTimeout)
	}
	return nil
}
