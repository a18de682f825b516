package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Emma781227/Ble-dor/internal/config"
)

func TestAttachIntegrations_NothingConfigured(t *testing.T) {
	var deps Deps
	closers := attachIntegrations(context.Background(), &config.Config{}, zap.NewNop(), &deps)
	if len(closers) != 0 {
		t.Errorf("expected no closers, got %d", len(closers))
	}
	if deps.OrderCache != nil || deps.CatalogCache != nil || deps.Events != nil || deps.Audit != nil {
		t.Error("optional integrations should stay nil")
	}
}

func TestAttachIntegrations_RedisAndKafka(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Redis: config.RedisConfig{Addr: mr.Addr(), TTL: time.Minute},
		Kafka: config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "bledor.orders"},
	}
	var deps Deps
	closers := attachIntegrations(context.Background(), cfg, zap.NewNop(), &deps)
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	if deps.OrderCache == nil || deps.CatalogCache == nil {
		t.Error("redis cache should be attached")
	}
	if deps.Events == nil {
		t.Error("kafka publisher should be attached")
	}
	if len(closers) != 2 {
		t.Errorf("expected 2 closers, got %d", len(closers))
	}
}

func TestAttachIntegrations_UnreachableRedisIsSkipped(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	var deps Deps
	closers := attachIntegrations(context.Background(), &config.Config{Redis: config.RedisConfig{Addr: addr}}, zap.NewNop(), &deps)
	if deps.OrderCache != nil || len(closers) != 0 {
		t.Error("an unreachable redis must not be attached")
	}
}

func TestMigrateSchema_DevUsesAutoMigrate(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := gdb.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	cfg := &config.Config{App: config.AppConfig{Dev: true}}
	if err := migrateSchema(cfg, gdb, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !gdb.Migrator().HasTable("orders") {
		t.Error("orders table missing")
	}
}
