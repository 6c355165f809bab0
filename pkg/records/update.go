package records

import (
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/contiamo/typednull/pkg/db/serialization/null"
	"github.com/contiamo/typednull/pkg/sql/typed"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// buildUpdate renders `UPDATE <table> SET count = <count> WHERE id = <id>` for the strategy.
// The result uses `$n` placeholders and can be executed by lib/pq and pgx alike.
func buildUpdate(table string, strategy Strategy, id int64, count null.Int64) (string, []interface{}, error) {
	switch strategy {
	case StrategyTyped:
		return updateBuilder(table, id, typed.Bind(typed.Int64, count))
	case StrategyTextCast:
		return updateBuilder(table, id, typed.BindViaText(typed.Int64, count))
	case StrategyServerInferred:
		return updateBuilder(table, id, count)
	case StrategyStatement, StrategyInferred:
		stmt, err := typed.Prepare("UPDATE " + table + " SET count = :count WHERE id = :id")
		if err != nil {
			return "", nil, err
		}

		if strategy == StrategyInferred {
			err = stmt.BindInferred(typed.Named("count"), count)
		} else {
			err = stmt.Bind(typed.Named("count"), typed.Int64, count)
		}
		if err != nil {
			return "", nil, err
		}

		err = stmt.Bind(typed.Named("id"), typed.Int64, id)
		if err != nil {
			return "", nil, err
		}
		return stmt.Render()
	default:
		return "", nil, fmt.Errorf("unknown binding strategy %s", strategy)
	}
}

func updateBuilder(table string, id int64, count interface{}) (string, []interface{}, error) {
	return psql.
		Update(table).
		Set("count", count).
		Where(squirrel.Eq{"id": id}).
		ToSql()
}

func insertBuilder(b squirrel.StatementBuilderType, table string, body string, count null.Int64) squirrel.InsertBuilder {
	return b.
		Insert(table).
		Columns("count", "body").
		Values(typed.Bind(typed.Int64, count), typed.Bind(typed.Text, body)).
		Suffix("RETURNING id")
}

func selectBuilder(b squirrel.StatementBuilderType, table string, id int64) squirrel.SelectBuilder {
	return b.
		Select("id", "count", "body").
		From(table).
		Where(squirrel.Eq{"id": id})
}
