package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/landwho/landwho/internal/config"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
)

// Migrate applies all pending schema migrations from cfg.MigrationsPath.
// An up-to-date schema is not an error.
func Migrate(cfg config.DatabaseConfig, logger logging.Logger) error {
	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.DSN())
	if err != nil {
		return fmt.Errorf("postgres: open migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("migrator close", logging.Err(errors.Join(srcErr, dbErr)))
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema up to date")
			return nil
		}
		return fmt.Errorf("postgres: migrate up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("postgres: read schema version: %w", err)
	}
	logger.Info("schema migrated",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty))
	return nil
}
