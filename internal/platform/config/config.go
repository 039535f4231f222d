package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Datastore backends accepted by SMARTSTORE_DATASTORE.
const (
	DatastoreMemory   = "memory"
	DatastoreRedis    = "redis"
	DatastorePostgres = "postgres"
)

// Server captures process level configuration for cmd/server and cmd/storectl.
type Server struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	Datastore       string        `env:"DATASTORE" envDefault:"memory"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	EventBuffer     int           `env:"EVENT_BUFFER" envDefault:"1024"`

	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
}

// RedisConfig holds connection and pool settings for the Redis datastore.
type RedisConfig struct {
	URL          string        `env:"URL"`
	Namespace    string        `env:"NAMESPACE" envDefault:"smartstore:"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// PostgresConfig holds the connection string and pool limits for the Postgres datastore.
type PostgresConfig struct {
	DSN             string        `env:"DSN"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
}

// KafkaConfig enables the Kafka device event sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers    []string `env:"BROKERS" envSeparator:","`
	Topic      string   `env:"TOPIC" envDefault:"smartstore.device-events"`
	Partitions int32    `env:"PARTITIONS" envDefault:"1"`
	Replicas   int16    `env:"REPLICAS" envDefault:"1"`

	BreakerFailures int           `env:"BREAKER_FAILURES" envDefault:"5"`
	BreakerCooldown time.Duration `env:"BREAKER_COOLDOWN" envDefault:"30s"`
}

// Enabled reports whether device records should be published to Kafka.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// FromEnv builds a Server config from SMARTSTORE_* environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "SMARTSTORE_"}); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements the env tags cannot express.
func (c Server) Validate() error {
	switch c.Datastore {
	case DatastoreMemory:
	case DatastoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("SMARTSTORE_REDIS_URL is required for the redis datastore")
		}
	case DatastorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("SMARTSTORE_POSTGRES_DSN is required for the postgres datastore")
		}
	default:
		return fmt.Errorf("unknown datastore %q", c.Datastore)
	}
	if c.EventBuffer <= 0 {
		return fmt.Errorf("SMARTSTORE_EVENT_BUFFER must be positive")
	}
	return nil
}
