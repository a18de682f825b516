package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// registers the postgres:// database driver
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Emma781227/Ble-dor/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Favorite{},
		&models.PasswordResetToken{},
	}
}

// Migrate applies the schema with gorm AutoMigrate. Used in dev and tests.
func Migrate(gdb *gorm.DB) error {
	for _, m := range Models() {
		if err := gdb.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	for _, table := range []string{"users", "products", "orders", "order_items"} {
		if !gdb.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// RunSQLMigrations applies the embedded versioned SQL files with golang-migrate.
func RunSQLMigrations(databaseURL string, log *zap.Logger) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("sql migrations up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, dirty, _ := m.Version()
	log.Info("sql migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
