package managers

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"

	"github.com/contiamo/typednull/pkg/db"
	"github.com/contiamo/typednull/pkg/tracing"
)

// BaseManager describes a typical data manager
type BaseManager interface {
	tracing.Tracer
	// DB returns the traceable connection the manager runs its queries with
	DB() db.TraceableDB
	// GetQueryBuilder creates a new squirrel builder for a SQL query
	GetQueryBuilder() squirrel.StatementBuilderType
	// GetTxQueryBuilder is the same as GetQueryBuilder but also opens a transaction
	GetTxQueryBuilder(ctx context.Context, opts *sql.TxOptions) (squirrel.StatementBuilderType, *sql.Tx, error)
}

// NewBaseManager creates a new base manager
func NewBaseManager(sqlDB *sql.DB, componentName string) BaseManager {
	return &baseManager{
		db:     sqlDB,
		traced: db.WrapWithTracing(sqlDB),
		Tracer: tracing.NewTracer("managers", componentName),
	}
}

type baseManager struct {
	db     *sql.DB
	traced db.TraceableDB
	tracing.Tracer
}

func (m *baseManager) DB() db.TraceableDB {
	return m.traced
}

func (m *baseManager) GetQueryBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		RunWith(m.traced)
}

func (m *baseManager) GetTxQueryBuilder(ctx context.Context, opts *sql.TxOptions) (squirrel.StatementBuilderType, *sql.Tx, error) {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return squirrel.StatementBuilder, nil, err
	}
	return squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		RunWith(db.WrapWithTracing(tx)), tx, nil
}
