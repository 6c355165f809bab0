package db

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/require"

	ctesting "github.com/contiamo/typednull/pkg/testing"
)

type spanMock struct {
	opentracing.Span
	key   string
	value string
}

//nolint:errcheck,forcetypeassert // it should panic if not a string
func (s *spanMock) LogKV(alternatingKeyValues ...interface{}) {
	s.key = alternatingKeyValues[0].(string)
	s.value = alternatingKeyValues[1].(string)
}

func TestWithTrimmedQuery(t *testing.T) {
	tdb, ok := WrapWithTracing(nil).(*traceableDB)
	require.True(t, ok, "wrong type")

	t.Run("no trimming set", func(t *testing.T) {
		s := &spanMock{}
		q := "SELECT very long long table"
		tdb.logQuery(s, q)
		require.Equal(t, "sql", s.key)
		require.Equal(t, q, s.value)
	})

	t.Run("trimming set", func(t *testing.T) {
		s := &spanMock{}

		cases := []struct {
			name     string
			query    string
			limit    uint
			expKey   string
			expValue string
		}{
			{
				name:     "does not log when set to 0",
				query:    "some query",
				limit:    0,
				expKey:   "",
				expValue: "",
			},
			{
				name:     "trims when set to a positive number and query is long",
				query:    "some query",
				limit:    3,
				expKey:   "sql",
				expValue: "som...",
			},
			{
				name:     "does not trim when set to a positive number and query is short",
				query:    "some",
				limit:    128,
				expKey:   "sql",
				expValue: "some",
			},
			{
				name:     "does not trim when set to length of query",
				query:    "some",
				limit:    4,
				expKey:   "sql",
				expValue: "some",
			},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				tdb, ok := tdb.WithTrimmedQuery(tc.limit).(*traceableDB)
				require.True(t, ok, "wrong type")
				tdb.logQuery(s, tc.query)
				require.Equal(t, tc.expKey, s.key)
				require.Equal(t, tc.expValue, s.value)
			})
		}
	})
}

func TestTraceableDBExecContext(t *testing.T) {
	hook := ctesting.CaptureLogs(t)
	mt := mocktracer.New()
	opentracing.SetGlobalTracer(mt)
	defer opentracing.SetGlobalTracer(opentracing.NoopTracer{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer sqlDB.Close()

	query := "UPDATE message SET count = CAST($1 AS bigint) WHERE id = $2"
	mock.ExpectExec(query).
		WithArgs(nil, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := WrapWithTracing(sqlDB).ExecContext(ctx, query, nil, int64(1))
	require.NoError(t, err)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)
	require.NoError(t, mock.ExpectationsWereMet())

	finished := mt.FinishedSpans()
	require.Len(t, finished, 1)
	require.Equal(t, "ExecContext", finished[0].OperationName)
	require.Equal(t, 2, finished[0].Tag("sql.args"))

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	require.Equal(t, query, entry.Message)
	require.Equal(t, "ExecContext", entry.Data["sql_method"])
	require.Equal(t, 1, entry.Data["sql_nulls"])
}
