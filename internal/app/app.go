// Package app wires configuration into the concrete datastore, engine, user
// registry and device event pipeline shared by cmd/server and cmd/storectl.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"smartstore/internal/datastore"
	"smartstore/internal/events"
	"smartstore/internal/platform/config"
	"smartstore/internal/platform/postgres"
	platformredis "smartstore/internal/platform/redis"
	"smartstore/internal/store/catalog"
	storemetrics "smartstore/internal/store/metrics"
	storeservice "smartstore/internal/store/service"
	userservice "smartstore/internal/user/service"
	userstore "smartstore/internal/user/store"
	"smartstore/pkg/platform/circuit"
)

// App holds the long-lived components of one process.
type App struct {
	Datastore datastore.DataStore
	Stores    *storeservice.Service
	Users     *userservice.Service
	Queue     *events.Queue
	Sink      events.Sink

	logger       *slog.Logger
	drainTimeout time.Duration
	closers      []func()
}

// Build opens the configured backends, restores persisted state and seeds the
// default users. Close releases everything Build opened.
func Build(ctx context.Context, cfg config.Server, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	a := &App{logger: logger, drainTimeout: cfg.ShutdownTimeout}

	ds, err := OpenDatastore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Datastore = ds
	a.closers = append(a.closers, func() {
		if err := ds.Close(); err != nil {
			logger.Warn("failed to close datastore", "error", err)
		}
	})

	sink, closeSink, err := OpenSink(ctx, cfg.Kafka, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Sink = sink
	a.closers = append(a.closers, closeSink)
	a.Queue = events.NewQueue(cfg.EventBuffer)

	a.Stores = storeservice.New(ds, catalog.New(ds),
		storeservice.WithLogger(logger),
		storeservice.WithMetrics(storemetrics.New(reg)),
		storeservice.WithEventQueue(a.Queue),
	)
	if err := a.Stores.Load(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("load store directory: %w", err)
	}

	a.Users = userservice.New(userstore.New(ds), userservice.WithLogger(logger))
	if err := a.Users.SeedDefaults(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("seed users: %w", err)
	}

	return a, nil
}

// Worker returns the consumer that moves queued device records into the sink.
func (a *App) Worker() *events.Worker {
	return events.NewWorker(a.Queue, a.Sink, a.logger, events.WithDrainTimeout(a.drainTimeout))
}

// RunWorker publishes queued device records until ctx ends. Cancellation is a
// clean stop.
func (a *App) RunWorker(ctx context.Context) error {
	if err := a.Worker().Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// OpenDatastore returns the backend selected by cfg.Datastore.
func OpenDatastore(ctx context.Context, cfg config.Server, logger *slog.Logger) (datastore.DataStore, error) {
	switch cfg.Datastore {
	case config.DatastoreRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		logger.Info("using redis datastore", "namespace", cfg.Redis.Namespace)
		return datastore.NewRedis(client.Client, datastore.WithNamespace(cfg.Redis.Namespace)), nil
	case config.DatastorePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		pg := datastore.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("using postgres datastore")
		return pg, nil
	case config.DatastoreMemory, "":
		logger.Info("using in-memory datastore")
		return datastore.NewInMemory(), nil
	default:
		return nil, fmt.Errorf("unknown datastore %q", cfg.Datastore)
	}
}

// OpenSink returns the Kafka sink, falling back to logging while the broker
// is failing, when brokers are configured and the log sink otherwise.
func OpenSink(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger) (events.Sink, func(), error) {
	if !cfg.Enabled() {
		return events.NewLogSink(logger), func() {}, nil
	}
	k, err := events.NewKafka(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, nil, err
	}
	if err := k.EnsureTopic(ctx, cfg.Partitions, cfg.Replicas); err != nil {
		k.Close()
		return nil, nil, err
	}
	logger.Info("publishing device records to kafka", "topic", cfg.Topic, "brokers", cfg.Brokers)
	breaker := circuit.New("kafka",
		circuit.WithFailureThreshold(cfg.BreakerFailures),
		circuit.WithCooldown(cfg.BreakerCooldown),
	)
	return events.NewFallbackSink(k, events.NewLogSink(logger), breaker, logger), k.Close, nil
}
