package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/contiamo/typednull/pkg/config"
	ctesting "github.com/contiamo/typednull/pkg/testing"
)

func TestOpen(t *testing.T) {
	defer goleak.VerifyNone(t)
	defer ctesting.DiscardLogging()()

	cfg := config.Database{
		Host:       "localhost",
		Name:       "records",
		Username:   "test",
		DriverName: "postgres",
	}

	t.Run("returns the validation error for an incomplete configuration", func(t *testing.T) {
		_, err := Open(context.Background(), config.Database{Name: "records"})
		require.EqualError(t, err, "driverName: cannot be blank.")
	})

	t.Run("stops retrying when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		db, err := Open(ctx, cfg)
		require.ErrorIs(t, err, context.Canceled)
		require.Nil(t, db)
	})
}

func TestOpenPool(t *testing.T) {
	defer goleak.VerifyNone(t)
	defer ctesting.DiscardLogging()()

	t.Run("returns the validation error for an incomplete configuration", func(t *testing.T) {
		_, err := OpenPool(context.Background(), config.Database{DriverName: "pgx"})
		require.EqualError(t, err, "name: cannot be blank.")
	})

	t.Run("stops retrying when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		pool, err := OpenPool(ctx, config.Database{
			Host:       "localhost",
			Name:       "records",
			DriverName: "pgx",
		})
		require.ErrorIs(t, err, context.Canceled)
		require.Nil(t, pool)
	})
}
