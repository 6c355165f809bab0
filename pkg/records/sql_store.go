package records

import (
	"context"
	"database/sql"
	"errors"

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/contiamo/typednull/pkg/data/managers"
	"github.com/contiamo/typednull/pkg/db/serialization/null"
	"github.com/contiamo/typednull/pkg/sql/typed"
)

// NewSQLStore creates a record store on top of database/sql, usually with the lib/pq driver
func NewSQLStore(db *sql.DB, opts ...Option) (Store, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &sqlStore{
		BaseManager: managers.NewBaseManager(db, "SQLStore"),
		table:       o.table,
	}, nil
}

type sqlStore struct {
	managers.BaseManager
	table string
}

func (s *sqlStore) Create(ctx context.Context, body string, count null.Int64) (id int64, err error) {
	span, ctx := s.StartSpan(ctx, "Create")
	defer func() {
		s.FinishSpan(span, err)
	}()
	span.SetTag("record.count", count.String())

	err = insertBuilder(s.GetQueryBuilder(), s.table, body, count).
		ScanContext(ctx, &id)
	if err != nil {
		return 0, err
	}

	span.SetTag("record.id", id)
	return id, nil
}

func (s *sqlStore) Get(ctx context.Context, id int64) (record Record, err error) {
	span, ctx := s.StartSpan(ctx, "Get")
	defer func() {
		s.FinishSpan(span, err)
	}()
	span.SetTag("record.id", id)

	err = selectBuilder(s.GetQueryBuilder(), s.table, id).
		ScanContext(ctx, &record.ID, &record.Count, &record.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}

	return record, nil
}

func (s *sqlStore) UpdateCount(ctx context.Context, id int64, count null.Int64) (int64, error) {
	return s.UpdateCountWith(ctx, StrategyTyped, id, count)
}

func (s *sqlStore) UpdateCountWith(ctx context.Context, strategy Strategy, id int64, count null.Int64) (affected int64, err error) {
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

	res, err := s.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	affected, err = res.RowsAffected()
	if err != nil {
		return 0, err
	}

	span.SetTag("record.affected", affected)
	return affected, nil
}

func tagUpdate(span opentracing.Span, strategy Strategy, id int64, count null.Int64) {
	span.SetTag("record.id", id)
	span.SetTag("record.count", count.String())
	span.SetTag("bind.strategy", strategy.String())
}

func tagKind(span opentracing.Span, err error) {
	if err == nil {
		return
	}
	span.SetTag("error.kind", typed.Classify(err).String())
}
