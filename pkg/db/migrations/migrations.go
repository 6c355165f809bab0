/*
Package migrations runs ordered schema statements, each in its own transaction, and records
the applied statements in the `migrations` table so they run only once.

	var migrate = migrations.NewMigrater([]migrations.Migration{
		{Name: "000_init", SQL: "CREATE TABLE message (...)"},
	})

	err := migrate(ctx, db)
*/
package migrations

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/sha3"
)

const idleTransactionErr = "pq: unexpected transaction status idle"

// Migration is a single named schema statement
type Migration struct {
	Name string
	SQL  string
}

// Version returns the tracking version of the migration, it changes whenever the SQL changes
func (m Migration) Version() string {
	hash := sha3.Sum256([]byte(m.SQL))
	return fmt.Sprintf("%s_%s", m.Name, hex.EncodeToString(hash[:]))
}

// NewMigrater creates a migration command that will execute the given list of migrations
func NewMigrater(list []Migration) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		logrus.Debug("preparing migration tracking")
		_, err := db.ExecContext(ctx,
			`CREATE TABLE IF NOT EXISTS migrations(
				version TEXT PRIMARY KEY,
				applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);`,
		)
		if err != nil {
			return errors.Wrap(err, "can not create the migrations table")
		}

		for _, m := range list {
			err = executeMigration(ctx, db, m)
			if err != nil {
				return err
			}
		}
		return nil
	}
}

func executeMigration(ctx context.Context, db *sql.DB, m Migration) (err error) {
	logger := logrus.
		WithField("method", "migrate").
		WithField("stmt", m.Name)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		logger.WithError(err).Error("failed to start migration transaction")
		return err
	}

	defer func() {
		if err == nil {
			err = tx.Commit()
			// lib/pq reports an idle transaction when nothing happened after `BEGIN;`,
			// see https://github.com/lib/pq/issues/225
			if err != nil && err.Error() == idleTransactionErr {
				logger.WithError(err).Warn("idle transaction at Commit")
				err = nil
			}
			if err != nil {
				logger.WithError(err).Error("can not commit migration transaction")
			}
			return
		}

		logger.WithError(err).Error("migration transaction requires rollback")

		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			err = errors.Wrap(err, rollbackErr.Error())
			logger.WithError(err).Error("migration rollback failed")
		}
	}()

	logger.Debug("migration started")

	sqlVersion := m.Version()
	var version string
	err = tx.QueryRowContext(ctx,
		`SELECT version FROM migrations WHERE version = $1;`,
		sqlVersion,
	).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		logger.WithError(err).Error("version hash scan err")
		return errors.Wrap(err, "version hash scan err")
	}
	err = nil

	if version == sqlVersion {
		logger.Info("migration already run")
		return nil
	}

	_, err = tx.ExecContext(ctx, m.SQL)
	if err != nil {
		logger.WithError(err).Error("migration failed")
		return errors.Wrap(err, "migration failed")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO migrations (version) VALUES ($1) ON CONFLICT (version) DO NOTHING;`,
		sqlVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to save sql version: %w", err)
	}

	logger.Info("migration finished")
	return nil
}
