// Package app opens the infrastructure shared by the server and worker
// binaries according to config.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"fantasy/internal/platform/broker"
	"fantasy/internal/platform/broker/kafka"
	"fantasy/internal/platform/config"
	"fantasy/internal/platform/postgres"
	"fantasy/internal/provisioning"
	"fantasy/internal/storage"
	pgstore "fantasy/internal/storage/postgres"
)

// Storage is an opened unit of work plus its health probe and cleanup.
type Storage struct {
	UnitOfWork storage.UnitOfWork
	Health     func(ctx context.Context) error
	Close      func()
}

// OpenStorage uses PostgreSQL when DATABASE_URL is set and the in-memory store
// otherwise.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	if cfg.Postgres.URL == "" {
		logger.WarnContext(ctx, "DATABASE_URL not set, using in-memory storage")
		return &Storage{
			UnitOfWork: storage.NewMemory(storage.WithTxTimeout(cfg.Market.TxTimeout)),
			Health:     func(context.Context) error { return nil },
			Close:      func() {},
		}, nil
	}

	pool, err := postgres.Connect(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	if err := pgstore.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Storage{
		UnitOfWork: pgstore.New(pool, pgstore.WithTxTimeout(cfg.Market.TxTimeout)),
		Health:     pool.Ping,
		Close:      pool.Close,
	}, nil
}

// Queue is the broker side used by a process.
type Queue interface {
	broker.Publisher
	broker.Subscriber
	Close() error
}

// OpenBroker returns the in-memory broker or a Kafka broker with the
// provisioning topics created.
func OpenBroker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Queue, error) {
	if cfg.Broker.Kind != config.BrokerKafka {
		return broker.NewMemory(broker.WithMaxDeliveries(cfg.Broker.MaxDeliveries)), nil
	}

	b, err := kafka.New(cfg.Broker.KafkaBrokers,
		kafka.WithGroup(cfg.Broker.KafkaGroup),
		kafka.WithMaxDeliveries(cfg.Broker.MaxDeliveries),
		kafka.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	if err := b.EnsureTopics(ctx, cfg.Broker.Partitions, cfg.Broker.Replication, provisioning.Topic); err != nil {
		// The worker retries its own connection; the server can still accept
		// registrations and report them as not queued.
		logger.WarnContext(ctx, "could not ensure kafka topics", "error", err)
	}
	return b, nil
}

// NewWorker builds the provisioning worker from config.
func NewWorker(cfg *config.Config, uow storage.UnitOfWork, sub broker.Subscriber, logger *slog.Logger, opts ...provisioning.WorkerOption) *provisioning.Worker {
	provisioner := provisioning.NewProvisioner(uow,
		provisioning.WithStartingBudget(cfg.Provisioning.StartingBudget),
		provisioning.WithProvisionerLogger(logger),
	)
	opts = append([]provisioning.WorkerOption{
		provisioning.WithBackoff(cfg.Worker.ConnectBaseDelay, cfg.Worker.ConnectMaxAttempts),
		provisioning.WithMaxDeliveries(cfg.Broker.MaxDeliveries),
		provisioning.WithLogger(logger),
	}, opts...)
	return provisioning.NewWorker(sub, provisioner, opts...)
}

// DescribeBroker names the configured broker for startup logs.
func DescribeBroker(cfg *config.Config) string {
	if cfg.Broker.Kind == config.BrokerKafka {
		return fmt.Sprintf("kafka %v", cfg.Broker.KafkaBrokers)
	}
	return config.BrokerMemory
}
