package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/civicops/incident-api/internal/api"
	"github.com/civicops/incident-api/internal/api/handler"
	"github.com/civicops/incident-api/internal/api/metrics"
	"github.com/civicops/incident-api/internal/core/ports"
	"github.com/civicops/incident-api/internal/core/service"
	"github.com/civicops/incident-api/internal/infrastructure/config"
	"github.com/civicops/incident-api/internal/infrastructure/db/gormdb"
	"github.com/civicops/incident-api/internal/infrastructure/db/mongo"
	redisdb "github.com/civicops/incident-api/internal/infrastructure/db/redis"
	"github.com/civicops/incident-api/internal/infrastructure/queue"
	"github.com/civicops/incident-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// store is the repository set selected by STORE_DRIVER.
type store struct {
	users     ports.UserRepository
	incidents ports.IncidentRepository
	events    ports.EventRepository
	pinger    handler.Pinger
	close     func(context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "incident-api",
		})
		if err != nil {
			return nil, err
		}
		s := mongo.NewStore(client, db)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		return &store{users: s.Users, incidents: s.Incidents, events: s.Events, pinger: s, close: s.Close}, nil

	case config.DriverPostgres, config.DriverSQLite:
		dsn := cfg.Postgres.DSN
		if cfg.Store.Driver == config.DriverSQLite {
			dsn = cfg.SQLite.Path
		}
		db, err := gormdb.Open(gormdb.Config{Driver: cfg.Store.Driver, DSN: dsn, Debug: cfg.LogLevel == "debug"})
		if err != nil {
			return nil, err
		}
		if err := gormdb.Migrate(db); err != nil {
			return nil, err
		}
		s := gormdb.NewStore(db)
		log.Info().Str("driver", cfg.Store.Driver).Msg("connected to relational store")
		return &store{
			users:     s.Users,
			incidents: s.Incidents,
			events:    s.Events,
			pinger:    s,
			close:     func(context.Context) error { return s.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}

// run wires the application and blocks until ctx is cancelled or the server fails.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}()

	health := map[string]handler.Pinger{"store": st.pinger}

	var idempotency ports.IdempotencyStore
	if cfg.Redis.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer func(c *goredis.Client) { _ = c.Close() }(rdb)
		idempotency = redisdb.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		health["redis"] = redisdb.Pinger{Client: rdb}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	}

	tokens, err := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Validity())
	if err != nil {
		return err
	}
	hasher := service.NewBcryptHasher(0)
	events := service.NewEventService(st.incidents, st.events, log)

	// History workers drain after the HTTP server stops and before the store closes.
	var publisher ports.EventPublisher = queue.SyncPublisher{Service: events, Log: log}
	if cfg.Dispatcher.Workers > 0 {
		workerCtx, stopWorkers := context.WithCancel(context.Background())
		d := queue.NewDispatcher(cfg.Dispatcher.Workers, events, log)
		d.Start(workerCtx)
		defer func() {
			stopWorkers()
			d.Wait()
		}()
		publisher = d
	}

	e := api.NewRouter(api.Deps{
		Log:           log,
		Auth:          service.NewAuthService(st.users, hasher, tokens, log),
		Authenticator: service.NewAuthenticator(tokens, st.users, log),
		Users:         service.NewUserService(st.users, hasher),
		Incidents:     service.NewIncidentService(st.incidents, st.users, idempotency, metrics.CountingPublisher{Next: publisher}, log),
		Events:        events,
		Health:        health,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
