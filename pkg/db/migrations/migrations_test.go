package migrations

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	ctesting "github.com/contiamo/typednull/pkg/testing"
)

func TestNewMigrater(t *testing.T) {
	defer ctesting.DiscardLogging()()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m := Migration{Name: "000_init", SQL: "CREATE TABLE message (id bigserial PRIMARY KEY)"}

	t.Run("runs and records a new migration", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT version FROM migrations").
			WithArgs(m.Version()).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectExec("CREATE TABLE message").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO migrations").
			WithArgs(m.Version()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewMigrater([]Migration{m})(ctx, db))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips a migration that already ran", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT version FROM migrations").
			WithArgs(m.Version()).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(m.Version()))
		mock.ExpectCommit()

		require.NoError(t, NewMigrater([]Migration{m})(ctx, db))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back a failed migration", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT version FROM migrations").
			WithArgs(m.Version()).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectExec("CREATE TABLE message").WillReturnError(errors.New("syntax error"))
		mock.ExpectRollback()

		err = NewMigrater([]Migration{m})(ctx, db)
		require.EqualError(t, err, "migration failed: syntax error")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMigrationVersion(t *testing.T) {
	a := Migration{Name: "000_init", SQL: "SELECT 1"}
	b := Migration{Name: "000_init", SQL: "SELECT 2"}

	require.Equal(t, a.Version(), a.Version())
	require.NotEqual(t, a.Version(), b.Version())
	require.Len(t, a.Version(), len("000_init_")+64)
}
