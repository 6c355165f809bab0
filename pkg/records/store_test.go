package records

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/contiamo/typednull/pkg/db/serialization/null"
	dbtest "github.com/contiamo/typednull/pkg/db/test"
	"github.com/contiamo/typednull/pkg/sql/typed"
	ctesting "github.com/contiamo/typednull/pkg/testing"
)

func setupDB(ctx context.Context, db *sql.DB) error {
	return Setup(ctx, db)
}

// storesUnderTest returns the database/sql and the pgx store, both on the same fresh database
func storesUnderTest(t *testing.T) (*sql.DB, map[string]Store) {
	name, db := dbtest.GetDatabase(t, setupDB)

	sqlStore, err := NewSQLStore(db)
	require.NoError(t, err)

	pgxStore, err := NewPgxStore(dbtest.GetPool(t, name))
	require.NoError(t, err)

	return db, map[string]Store{
		"lib/pq": sqlStore,
		"pgx":    pgxStore,
	}
}

func TestUpdateCount(t *testing.T) {
	defer ctesting.DiscardLogging()()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, stores := storesUnderTest(t)

	for driver, store := range stores {
		store := store
		t.Run(driver, func(t *testing.T) {
			t.Run("a value is read back", func(t *testing.T) {
				id, err := store.Create(ctx, "value", null.Int64From(0))
				require.NoError(t, err)

				affected, err := store.UpdateCount(ctx, id, null.Int64From(12))
				require.NoError(t, err)
				require.EqualValues(t, 1, affected)

				record, err := store.Get(ctx, id)
				require.NoError(t, err)
				require.Equal(t, Record{ID: id, Count: null.Int64From(12), Body: "value"}, record)
			})

			for _, v := range []int64{math.MinInt64, -5, 0, math.MaxInt64} {
				v := v
				t.Run(fmt.Sprintf("the value %d is read back", v), func(t *testing.T) {
					id, err := store.Create(ctx, "bounds", null.Int64{})
					require.NoError(t, err)

					affected, err := store.UpdateCount(ctx, id, null.Int64From(v))
					require.NoError(t, err)
					require.EqualValues(t, 1, affected)

					record, err := store.Get(ctx, id)
					require.NoError(t, err)
					require.Equal(t, null.Int64From(v), record.Count)
				})
			}

			t.Run("a typed null is accepted and read back as null", func(t *testing.T) {
				id, err := store.Create(ctx, "typed null", null.Int64From(0))
				require.NoError(t, err)

				affected, err := store.UpdateCount(ctx, id, null.Int64{})
				require.NoError(t, err)
				require.EqualValues(t, 1, affected)

				record, err := store.Get(ctx, id)
				require.NoError(t, err)
				require.False(t, record.Count.Valid)
			})

			t.Run("the inferred null is rejected by the server", func(t *testing.T) {
				id, err := store.Create(ctx, "inferred", null.Int64From(3))
				require.NoError(t, err)

				affected, err := store.UpdateCountWith(ctx, StrategyInferred, id, null.Int64{})
				require.Error(t, err)
				require.Zero(t, affected)
				require.True(t, typed.IsServerTypeMismatch(err), err.Error())
				require.Contains(t, err.Error(), "bytea")
				require.Equal(t, typed.KindServerTypeMismatch, typed.Classify(err))
				require.False(t, typed.Classify(err).Retryable())

				record, err := store.Get(ctx, id)
				require.NoError(t, err)
				require.Equal(t, null.Int64From(3), record.Count)
			})

			t.Run("a missing record affects no rows", func(t *testing.T) {
				affected, err := store.UpdateCount(ctx, 1<<40, null.Int64{})
				require.NoError(t, err)
				require.Zero(t, affected)

				_, err = store.Get(ctx, 1<<40)
				require.Equal(t, ErrNotFound, err)
			})

			for _, strategy := range []Strategy{StrategyTyped, StrategyStatement, StrategyTextCast, StrategyServerInferred} {
				strategy := strategy
				t.Run("strategy "+strategy.String()+" binds null and values", func(t *testing.T) {
					id, err := store.Create(ctx, strategy.String(), null.Int64{})
					require.NoError(t, err)

					affected, err := store.UpdateCountWith(ctx, strategy, id, null.Int64From(7))
					require.NoError(t, err)
					require.EqualValues(t, 1, affected)

					record, err := store.Get(ctx, id)
					require.NoError(t, err)
					require.Equal(t, null.Int64From(7), record.Count)

					affected, err = store.UpdateCountWith(ctx, strategy, id, null.Int64{})
					require.NoError(t, err)
					require.EqualValues(t, 1, affected)

					record, err = store.Get(ctx, id)
					require.NoError(t, err)
					require.False(t, record.Count.Valid)
				})
			}
		})
	}
}

func TestStatementRebind(t *testing.T) {
	defer ctesting.DiscardLogging()()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, stores := storesUnderTest(t)
	store := stores["lib/pq"]

	id, err := store.Create(ctx, "rebind", null.Int64From(0))
	require.NoError(t, err)

	stmt, err := typed.Prepare("UPDATE message SET count = :count WHERE id = :id")
	require.NoError(t, err)
	require.NoError(t, stmt.Bind(typed.Named("id"), typed.Int64, id))
	require.NoError(t, stmt.Bind(typed.Named("count"), typed.Int64, 5))
	require.NoError(t, stmt.BindNull(typed.Named("count"), typed.Int64))

	affected, err := stmt.ExecContext(ctx, db)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	record, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.False(t, record.Count.Valid)
}

func TestIntegerNullIntoBigint(t *testing.T) {
	defer ctesting.DiscardLogging()()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, stores := storesUnderTest(t)
	store := stores["lib/pq"]

	id, err := store.Create(ctx, "integer null", null.Int64From(9))
	require.NoError(t, err)

	stmt, err := typed.Prepare("UPDATE message SET count = ? WHERE id = ?")
	require.NoError(t, err)
	require.NoError(t, stmt.Bind(typed.Index(1), typed.Int32, nil))
	require.NoError(t, stmt.Bind(typed.Index(2), typed.Int64, id))

	query, _, err := stmt.Render()
	require.NoError(t, err)
	require.Equal(t, "UPDATE message SET count = CAST($1 AS integer) WHERE id = CAST($2 AS bigint)", query)

	affected, err := stmt.ExecContext(ctx, db)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	record, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.False(t, record.Count.Valid)
}

func TestSetupIsIdempotent(t *testing.T) {
	defer ctesting.DiscardLogging()()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, db := dbtest.GetDatabase(t, setupDB)
	require.NoError(t, Setup(ctx, db))
	require.NoError(t, Setup(ctx, db, WithTable("notes")))

	store, err := NewSQLStore(db, WithTable("notes"))
	require.NoError(t, err)

	id, err := store.Create(ctx, "note", null.Int64{})
	require.NoError(t, err)
	dbtest.EqualCount(t, db, 1, "notes", nil)

	record, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "note", record.Body)

	require.Error(t, Setup(ctx, db, WithTable("1notes")))
}
