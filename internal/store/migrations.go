package store

import (
	"context"
	"embed"
	"errors"
	"fmt"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the database schema at path up to date.
func Migrate(ctx context.Context, path string) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", source, "sqlite://"+path)
	if err != nil {
		return fmt.Errorf("failed to open the database: %w", err)
	}
	defer func() {
		if sourceErr, dbErr := migrator.Close(); sourceErr != nil || dbErr != nil {
			logging.L(ctx).Errorf("Failed to close the migrator: %s.", errors.Join(sourceErr, dbErr))
		}
	}()

	logging.L(ctx).Debugf("Applying database migrations...")

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	return nil
}
