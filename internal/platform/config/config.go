package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	stringutil "fantasy/pkg/platform/strings"
)

const (
	BrokerMemory = "memory"
	BrokerKafka  = "kafka"
)

// Config is the full process configuration, read from the environment.
type Config struct {
	Server       Server
	Log          Log
	Postgres     Postgres
	Redis        RedisConfig
	Broker       Broker
	Market       Market
	Provisioning Provisioning
	Worker       Worker
	Auth         Auth
	RateLimit    RateLimit
	Tracing      Tracing
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type Log struct {
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
}

// Postgres is optional; without a URL the in-memory store is used.
type Postgres struct {
	URL             string        `env:"DATABASE_URL"`
	MaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"25"`
	MinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	ConnectAttempts int           `env:"DB_CONNECT_ATTEMPTS" envDefault:"5"`
	ConnectDelay    time.Duration `env:"DB_CONNECT_DELAY" envDefault:"1s"`
}

// RedisConfig is optional; without a URL notifications stay in memory.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

type Broker struct {
	Kind          string   `env:"BROKER" envDefault:"memory"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaGroup    string   `env:"KAFKA_GROUP" envDefault:"fantasy-provisioning"`
	Partitions    int32    `env:"KAFKA_PARTITIONS" envDefault:"1"`
	Replication   int16    `env:"KAFKA_REPLICATION" envDefault:"1"`
	MaxDeliveries int      `env:"BROKER_MAX_DELIVERIES" envDefault:"5"`
}

type Market struct {
	TxTimeout time.Duration `env:"MARKET_TX_TIMEOUT" envDefault:"5s"`
}

type Provisioning struct {
	StartingBudget int64 `env:"PROVISIONING_STARTING_BUDGET" envDefault:"5000000"`
}

type Worker struct {
	ConnectBaseDelay   time.Duration `env:"WORKER_CONNECT_BASE_DELAY" envDefault:"5s"`
	ConnectMaxAttempts int           `env:"WORKER_CONNECT_MAX_ATTEMPTS" envDefault:"5"`
}

type Auth struct {
	// Use a default for development; override in production.
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"fantasy"`
}

// RateLimit bounds unauthenticated requests per client IP. Zero disables it.
type RateLimit struct {
	Register int           `env:"RATE_LIMIT_REGISTER" envDefault:"20"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// Tracing is off unless an OTLP/HTTP endpoint URL is given.
type Tracing struct {
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"`
	SampleRatio float64 `env:"TRACING_SAMPLE_RATIO" envDefault:"1"`
}

// Load reads optional .env files, then the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Debug("env file not loaded, using process environment", "files", envFiles)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Broker.KafkaBrokers = stringutil.DedupeAndTrim(cfg.Broker.KafkaBrokers)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Broker.Kind {
	case BrokerMemory:
	case BrokerKafka:
		if len(c.Broker.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("KAFKA_BROKERS is required when BROKER=kafka"))
		}
		// The API and the standalone worker must share one store.
		if c.Postgres.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when BROKER=kafka"))
		}
	default:
		errs = append(errs, fmt.Errorf("BROKER must be %q or %q, got %q", BrokerMemory, BrokerKafka, c.Broker.Kind))
	}
	if c.Broker.MaxDeliveries < 1 {
		errs = append(errs, errors.New("BROKER_MAX_DELIVERIES must be at least 1"))
	}
	if c.Market.TxTimeout <= 0 {
		errs = append(errs, errors.New("MARKET_TX_TIMEOUT must be positive"))
	}
	if c.Provisioning.StartingBudget < 0 {
		errs = append(errs, errors.New("PROVISIONING_STARTING_BUDGET cannot be negative"))
	}
	if c.Worker.ConnectMaxAttempts < 1 {
		errs = append(errs, errors.New("WORKER_CONNECT_MAX_ATTEMPTS must be at least 1"))
	}
	if c.RateLimit.Register > 0 && c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive when RATE_LIMIT_REGISTER is set"))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, errors.New("TRACING_SAMPLE_RATIO must be within [0, 1]"))
	}
	if c.Auth.JWTSigningKey == "" {
		errs = append(errs, errors.New("JWT_SIGNING_KEY is required"))
	}
	return errors.Join(errs...)
}

// EmbeddedWorker reports whether the API process runs the provisioning worker
// itself. An in-memory broker cannot be shared with a separate process.
func (c *Config) EmbeddedWorker() bool {
	return c.Broker.Kind == BrokerMemory
}
