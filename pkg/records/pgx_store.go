package records

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/contiamo/typednull/pkg/db/serialization/null"
	"github.com/contiamo/typednull/pkg/tracing"
)

// NewPgxStore creates a record store on top of a pgx connection pool.
// Every call acquires a connection from the pool and releases it when done.
func NewPgxStore(pool *pgxpool.Pool, opts ...Option) (Store, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &pgxStore{
		Tracer: tracing.NewTracer("records", "PgxStore"),
		pool:   pool,
		table:  o.table,
	}, nil
}

type pgxStore struct {
	tracing.Tracer
	pool  *pgxpool.Pool
	table string
}

func (s *pgxStore) Create(ctx context.Context, body string, count null.Int64) (id int64, err error) {
	span, ctx := s.StartSpan(ctx, "Create")
	defer func() {
		s.FinishSpan(span, err)
	}()
	span.SetTag("record.count", count.String())

	query, args, err := insertBuilder(psql, s.table, body, count).ToSql()
	if err != nil {
		return 0, err
	}

	logQuery("QueryRow", query, args)
	err = s.pool.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		return 0, err
	}

	span.SetTag("record.id", id)
	return id, nil
}

func (s *pgxStore) Get(ctx context.Context, id int64) (record Record, err error) {
	span, ctx := s.StartSpan(ctx, "Get")
	defer func() {
		s.FinishSpan(span, err)
	}()
	span.SetTag("record.id", id)

	query, args, err := selectBuilder(psql, s.table, id).ToSql()
	if err != nil {
		return Record{}, err
	}

	logQuery("QueryRow", query, args)
	err = s.pool.QueryRow(ctx, query, args...).Scan(&record.ID, &record.Count, &record.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}

	return record, nil
}

func (s *pgxStore) UpdateCount(ctx context.Context, id int64, count null.Int64) (int64, error) {
	return s.UpdateCountWith(ctx, StrategyTyped, id, count)
}

func (s *pgxStore) UpdateCountWith(ctx context.Context, strategy Strategy, id int64, count null.Int64) (affected int64, err error) {
	span, ctx := s.StartSpan(ctx, "UpdateCount")
	defer func() {
		tagKind(span, err)
		s.FinishSpan(span, err)
	}()
	tagUpdate(span, strategy, id, count)

	query, args, err := buildUpdate(s.table, strategy, id, count)
	if err != nil {
		return 0, err
	}

	logQuery("Exec", query, args)
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	affected = tag.RowsAffected()
	span.SetTag("record.affected", affected)
	return affected, nil
}

func logQuery(method, query string, args []interface{}) {
	logrus.
		WithField("sql_method", method).
		WithField("sql_args", len(args)).
		Debug(query)
}
