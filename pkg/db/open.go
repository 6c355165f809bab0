package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/contiamo/typednull/pkg/config"
	"github.com/contiamo/typednull/pkg/tracing"
)

// Open opens a connection to a database and retries until ctx.Done()
// The users must import all the necessary drivers before calling this function.
func Open(ctx context.Context, cfg config.Database) (db *sql.DB, err error) {
	tracer := tracing.NewTracer("db", "Connection")
	span, ctx := tracer.StartSpan(ctx, "Open")
	defer func() {
		tracer.FinishSpan(span, err)
	}()

	span.SetTag("host", cfg.Host)
	span.SetTag("port", cfg.Port)
	span.SetTag("name", cfg.Name)
	span.SetTag("username", cfg.Username)

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	connStr, err := cfg.GetConnectionString()
	if err != nil {
		return nil, err
	}

	err = retry(ctx, func() error {
		db, err = sql.Open(cfg.DriverName, connStr)
		if err != nil {
			return fmt.Errorf("failed to open db connection: %w", err)
		}

		err = db.PingContext(ctx)
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to ping target db: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.PoolSize)
	return db, nil
}

// OpenPool opens a pgx connection pool and retries until ctx.Done()
func OpenPool(ctx context.Context, cfg config.Database) (pool *pgxpool.Pool, err error) {
	tracer := tracing.NewTracer("db", "Connection")
	span, ctx := tracer.StartSpan(ctx, "OpenPool")
	defer func() {
		tracer.FinishSpan(span, err)
	}()

	span.SetTag("host", cfg.Host)
	span.SetTag("port", cfg.Port)
	span.SetTag("name", cfg.Name)

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	connStr, err := cfg.GetConnectionString()
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, err
	}
	if cfg.PoolSize > 0 {
		poolCfg.MaxConns = int32(cfg.PoolSize)
	}

	err = retry(ctx, func() error {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return fmt.Errorf("failed to create db pool: %w", err)
		}

		err = pool.Ping(ctx)
		if err != nil {
			pool.Close()
			return fmt.Errorf("failed to ping target db: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pool, nil
}

// retry runs op with exponential backoff until it succeeds or ctx is done
func retry(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		select {
		case <-ctx.Done():
			return backoff.Permanent(ctx.Err())
		default:
			err := op()
			if err != nil {
				logrus.Error(err.Error())
			}
			return err
		}
	}, backoff.WithContext(backoff.NewExponentialBackOff(), ctx))
}
