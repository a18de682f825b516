// Package db opens the PostgreSQL connection and prepares the schema.
package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Emma781227/Ble-dor/internal/config"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// GormConfig is shared by the server and the sqlite-backed tests so both see
// unique violations as gorm.ErrDuplicatedKey.
func GormConfig(debug bool) *gorm.Config {
	level := logger.Silent
	if debug {
		level = logger.Warn
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}
}

// Connect opens PostgreSQL, retrying while the database container starts.
func Connect(ctx context.Context, cfg config.DatabaseConfig, dev bool, log *zap.Logger) (*gorm.DB, error) {
	var (
		gdb *gorm.DB
		err error
	)
	for i := 1; i <= connectAttempts; i++ {
		gdb, err = gorm.Open(postgres.Open(cfg.DSN()), GormConfig(dev))
		if err == nil {
			err = gdb.WithContext(ctx).Exec("SELECT 1").Error
		}
		if err == nil {
			break
		}
		log.Warn("database not ready",
			zap.Int("attempt", i),
			zap.Int("max_attempts", connectAttempts),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, err)
	}
	log.Info("database connected", zap.String("host", cfg.Host), zap.String("dbname", cfg.DBName))
	return gdb, nil
}
