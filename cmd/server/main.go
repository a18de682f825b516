package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Emma781227/Ble-dor/auth"
	"github.com/Emma781227/Ble-dor/internal/audit"
	"github.com/Emma781227/Ble-dor/internal/cache"
	"github.com/Emma781227/Ble-dor/internal/config"
	"github.com/Emma781227/Ble-dor/internal/db"
	"github.com/Emma781227/Ble-dor/internal/events"
	"github.com/Emma781227/Ble-dor/internal/logging"
	"github.com/Emma781227/Ble-dor/internal/reports"
	"github.com/Emma781227/Ble-dor/internal/store"
)

var (
	configPath      = flag.String("config", "", "Path to a YAML config file")
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Log, cfg.App.Dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("connecting to database",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName),
		zap.String("user", cfg.Database.User))
	gdb, err := db.Connect(ctx, cfg.Database, cfg.App.Dev, log)
	if err != nil {
		return err
	}

	if *migrateOnlyFlag {
		if err := migrateSchema(cfg, gdb, log); err != nil {
			return err
		}
		log.Info("migrations completed")
		return nil
	}
	if *seedOnlyFlag {
		return db.Seed(gdb, log)
	}

	if cfg.App.Migrations {
		if err := migrateSchema(cfg, gdb, log); err != nil {
			return err
		}
	}
	if cfg.App.Seed {
		if err := db.Seed(gdb, log); err != nil {
			return err
		}
	}

	auth.SetSecret(cfg.App.SessionSecret)
	users := store.NewUserStore(gdb)
	auth.SetUserVerifier(func(ctx context.Context, uid string) bool {
		ok, err := users.Exists(ctx, uid)
		if err != nil {
			log.Warn("session user lookup failed", zap.String("user_id", uid), zap.Error(err))
		}
		return ok
	})

	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	deps := Deps{
		DB:                gdb,
		Reports:           reports.NewStore(sqlx.NewDb(sqlDB, "postgres")),
		Log:               log,
		TicketPrefix:      cfg.Ticket.Prefix,
		MaxTicketAttempts: cfg.Ticket.MaxAttempts,
	}
	closers := attachIntegrations(ctx, cfg, log, &deps)
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.App.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "Accept-Language"},
		AllowCredentials: true,
	}).Handler(NewApp(deps))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withLogging(log, handler),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped gracefully")
	return nil
}

// migrateSchema applies the versioned SQL migrations outside dev and gorm
// AutoMigrate in dev.
func migrateSchema(cfg *config.Config, gdb *gorm.DB, log *zap.Logger) error {
	if cfg.App.Dev {
		return db.Migrate(gdb)
	}
	return db.RunSQLMigrations(cfg.Database.URL(), log)
}

// attachIntegrations connects the optional redis, kafka and mongo backends.
// A backend that is configured but unreachable is logged and skipped.
func attachIntegrations(ctx context.Context, cfg *config.Config, log *zap.Logger, deps *Deps) []func() {
	var closers []func()

	if cfg.Redis.Enabled() {
		client, err := cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			c := cache.NewRedisCache(client, cfg.Redis.TTL)
			deps.OrderCache, deps.CatalogCache = c, c
			closers = append(closers, func() { _ = client.Close() })
			log.Info("redis cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
		}
	}

	if cfg.Kafka.Enabled() {
		pub := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		deps.Events = pub
		closers = append(closers, func() {
			if err := pub.Close(); err != nil {
				log.Warn("kafka writer close failed", zap.Error(err))
			}
		})
		log.Info("order events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	if cfg.Mongo.Enabled() {
		auditLog, err := audit.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			log.Warn("mongo unavailable, audit trail disabled", zap.Error(err))
		} else {
			deps.Audit = auditLog
			closers = append(closers, func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = auditLog.Close(closeCtx)
			})
			log.Info("audit trail enabled", zap.String("database", cfg.Mongo.Database))
		}
	}
	return closers
}
