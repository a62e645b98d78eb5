package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 100.0, cfg.Grid.CellSizeMeters)
	assert.Equal(t, 0.0005, cfg.Grid.BBoxMarginDegrees)
	assert.Equal(t, DefaultMaxConcurrent, cfg.Mint.MaxConcurrent)
	assert.Equal(t, DefaultConfirmTimeout, cfg.Ledger.ConfirmTimeout)
	assert.Equal(t, DefaultInFlightTTL, cfg.Redis.EntryTTL)
	assert.Equal(t, "landwho-worker", cfg.Kafka.ConsumerGroup)
	assert.Equal(t, "landwho-parcels", cfg.Content.Bucket)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Grid.CellSizeMeters = 50
	cfg.Server.Port = 9999
	ApplyDefaults(cfg)

	assert.Equal(t, 50.0, cfg.Grid.CellSizeMeters)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"empty db host", func(c *Config) { c.Database.Host = "" }},
		{"empty db name", func(c *Config) { c.Database.Database = "" }},
		{"redis enabled without addr", func(c *Config) { c.Redis.Enabled = true }},
		{"kafka enabled without brokers", func(c *Config) { c.Kafka.Enabled = true }},
		{"negative cell size", func(c *Config) { c.Grid.CellSizeMeters = -1 }},
		{"zero max cells", func(c *Config) { c.Grid.MaxCells = 0 }},
		{"zero max concurrent", func(c *Config) { c.Mint.MaxConcurrent = 0 }},
		{"zero confirm timeout", func(c *Config) { c.Ledger.ConfirmTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p",
		Database: "landwho", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@db:5432/landwho?sslmode=disable", cfg.DSN())
}

func TestServerAddr(t *testing.T) {
	cfg := ServerConfig{Host: "0.0.0.0", Port: 8080}
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
database:
  host: pgtest
  database: landwho_test
grid:
  cell_size_meters: 25
mint:
  attempt_timeout: 90s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "pgtest", cfg.Database.Host)
	assert.Equal(t, "landwho_test", cfg.Database.Database)
	assert.Equal(t, 25.0, cfg.Grid.CellSizeMeters)
	assert.Equal(t, 90*time.Second, cfg.Mint.AttemptTimeout)
	// Everything untouched by the file keeps its default.
	assert.Equal(t, DefaultMaxCells, cfg.Grid.MaxCells)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grid:\n  cell_size_meters: -5\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LANDWHO_SERVER_PORT", "7070")
	t.Setenv("LANDWHO_DATABASE_HOST", "envhost")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "envhost", cfg.Database.Host)
}

func TestMustLoadPanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}
