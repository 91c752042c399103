package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"

	"github.com/Rrens/auth-service/internal/config"
	"github.com/Rrens/auth-service/internal/domain"
	"github.com/Rrens/auth-service/internal/repository/memory"
	"github.com/Rrens/auth-service/internal/repository/mongo"
	"github.com/Rrens/auth-service/internal/repository/postgres"
	"github.com/Rrens/auth-service/internal/repository/sqlstore"
)

const (
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
)

// store is an opened user store and its release function
type store struct {
	users domain.UserRepository
	close func()
}

// connect retries fn with exponential backoff until it succeeds or the
// attempts run out
func connect(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(connectAttempts, retry.NewExponential(connectBackoff))
	attempt := 0

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := fn(ctx); err != nil {
			log.Warn().Err(err).Str("store", name).Int("attempt", attempt).Msg("Store not reachable, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
}

// openStore connects the configured user store and prepares its schema
func openStore(ctx context.Context, cfg config.StorageConfig) (*store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn().Msg("Using in-memory user store, data is lost on restart")
		return &store{users: memory.NewUserRepository(), close: func() {}}, nil

	case config.DriverMongo:
		var client *mongo.Client
		err := connect(ctx, cfg.Driver, func(ctx context.Context) (err error) {
			client, err = mongo.NewClient(ctx, cfg.Mongo)
			return err
		})
		if err != nil {
			return nil, err
		}

		repo := mongo.NewUserRepository(client.Users())
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Close(context.Background())
			return nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		return &store{users: repo, close: func() { _ = client.Close(context.Background()) }}, nil

	case config.DriverPostgres:
		var db *postgres.DB
		err := connect(ctx, cfg.Driver, func(ctx context.Context) (err error) {
			db, err = postgres.NewDB(ctx, cfg.Postgres)
			return err
		})
		if err != nil {
			return nil, err
		}

		if err := postgres.RunMigrations(cfg.Postgres.DSN(), cfg.Postgres.MigrationsURL); err != nil {
			db.Close()
			return nil, err
		}
		return &store{users: postgres.NewUserRepository(db.Pool), close: db.Close}, nil

	case config.DriverMySQL, config.DriverSQLite:
		dialect, err := sqlstore.DialectFor(cfg.Driver)
		if err != nil {
			return nil, err
		}

		sqlCfg := cfg.MySQL
		if cfg.Driver == config.DriverSQLite {
			sqlCfg = cfg.SQLite
		}

		var db *sql.DB
		err = connect(ctx, cfg.Driver, func(ctx context.Context) (err error) {
			db, err = sqlstore.Open(ctx, dialect, sqlCfg.DSN, sqlCfg.MaxOpenConns)
			return err
		})
		if err != nil {
			return nil, err
		}

		if err := sqlstore.EnsureSchema(ctx, db, dialect); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &store{users: sqlstore.NewUserRepository(db, dialect), close: func() { _ = db.Close() }}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
