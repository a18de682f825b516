// Package config provides application configuration loaded from an optional
// YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	App      AppConfig      `mapstructure:"app"`
	Ticket   TicketConfig   `mapstructure:"ticket"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // seconds
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev           bool     `mapstructure:"dev"`
	Migrations    bool     `mapstructure:"migrations"`
	Seed          bool     `mapstructure:"seed"`
	SessionSecret string   `mapstructure:"session_secret"`
	CORSOrigins   []string `mapstructure:"cors_origins"`
}

// TicketConfig controls ticket number minting.
type TicketConfig struct {
	Prefix      string `mapstructure:"prefix"`
	MaxAttempts int    `mapstructure:"max_attempts"`
}

// RedisConfig enables the order and catalog cache when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// KafkaConfig enables order events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 && k.Brokers[0] != "" }

// MongoConfig enables the order audit trail when URI is set.
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

func (m MongoConfig) Enabled() bool { return m.URI != "" }

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

var defaults = map[string]any{
	"server.port":          "8080",
	"server.read_timeout":  15,
	"server.write_timeout": 15,
	"server.idle_timeout":  60,

	"database.host":     "localhost",
	"database.port":     5432,
	"database.user":     "bledor",
	"database.password": "bledor123",
	"database.dbname":   "bledor",
	"database.sslmode":  "disable",

	"app.dev":            true,
	"app.migrations":     false,
	"app.seed":           false,
	"app.session_secret": "",
	"app.cors_origins":   []string{"http://localhost:3000"},

	"ticket.prefix":       "BLE",
	"ticket.max_attempts": 5,

	"redis.addr":     "",
	"redis.password": "",
	"redis.db":       0,
	"redis.ttl":      "10m",

	"kafka.brokers": []string{},
	"kafka.topic":   "bledor.orders",

	"mongo.uri":      "",
	"mongo.database": "bledor",

	"log.level":  "info",
	"log.format": "json",
}

// Short env names kept for compatibility with existing deployments.
var legacyEnv = map[string]string{
	"server.port":          "PORT",
	"server.read_timeout":  "SERVER_READ_TIMEOUT",
	"server.write_timeout": "SERVER_WRITE_TIMEOUT",
	"server.idle_timeout":  "SERVER_IDLE_TIMEOUT",
	"database.host":        "DB_HOST",
	"database.port":        "DB_PORT",
	"database.user":        "DB_USER",
	"database.password":    "DB_PASSWORD",
	"database.dbname":      "DB_NAME",
	"database.sslmode":     "DB_SSLMODE",
	"app.dev":              "DEV",
	"app.migrations":       "MIGRATIONS",
	"app.seed":             "SEED",
	"app.session_secret":   "SESSION_SECRET",
}

// Load reads configuration. When path is empty an optional ./config.yaml is
// used; environment variables (SERVER_PORT, DATABASE_HOST, ...) override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		canonical := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, canonical, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Ticket.MaxAttempts < 1 {
		cfg.Ticket.MaxAttempts = 1
	}
	return &cfg, nil
}
