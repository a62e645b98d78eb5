package config

import "time"

// Default values applied to unset fields.  The grid defaults follow the
// production map behavior: 100 m square parcels over a bounding box expanded
// by half a thousandth of a degree.
const (
	DefaultServerPort      = 8080
	DefaultCellSizeMeters  = 100.0
	DefaultBBoxMargin      = 0.0005
	DefaultMaxCells        = 250_000
	DefaultMaxConcurrent   = 16
	DefaultAttemptTimeout  = 5 * time.Minute
	DefaultConfirmTimeout  = 2 * time.Minute
	DefaultInFlightTTL     = 10 * time.Minute
	DefaultShutdownTimeout = 15 * time.Second
)

// ApplyDefaults fills unset fields with sensible defaults.  Explicitly set
// values are never overwritten.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "landwho"
	}
	if cfg.Database.Database == "" {
		cfg.Database.Database = "landwho"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}

	if cfg.Redis.EntryTTL == 0 {
		cfg.Redis.EntryTTL = DefaultInFlightTTL
	}

	if cfg.Kafka.ConsumerGroup == "" {
		cfg.Kafka.ConsumerGroup = "landwho-worker"
	}

	if cfg.Content.Bucket == "" {
		cfg.Content.Bucket = "landwho-parcels"
	}

	if cfg.Ledger.ConfirmTimeout == 0 {
		cfg.Ledger.ConfirmTimeout = DefaultConfirmTimeout
	}
	if cfg.Ledger.GasLimit == 0 {
		cfg.Ledger.GasLimit = 500_000
	}

	if cfg.Grid.CellSizeMeters == 0 {
		cfg.Grid.CellSizeMeters = DefaultCellSizeMeters
	}
	if cfg.Grid.BBoxMarginDegrees == 0 {
		cfg.Grid.BBoxMarginDegrees = DefaultBBoxMargin
	}
	if cfg.Grid.MaxCells == 0 {
		cfg.Grid.MaxCells = DefaultMaxCells
	}

	if cfg.Mint.MaxConcurrent == 0 {
		cfg.Mint.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.Mint.AttemptTimeout == 0 {
		cfg.Mint.AttemptTimeout = DefaultAttemptTimeout
	}

	if cfg.Worker.PollInterval == 0 {
		cfg.Worker.PollInterval = 5 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}
