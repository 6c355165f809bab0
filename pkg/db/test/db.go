package test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	// since this test helper is going to be used in tests the CLI would not initialize
	// the drivers for us, so we need to put it here again
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/contiamo/typednull/pkg/config"
	cdb "github.com/contiamo/typednull/pkg/db"
	"github.com/contiamo/typednull/pkg/validation"
)

const (
	defaultDBName = "postgres" // in postgres the default DB is `postgres`
	adminUser     = "contiamo_test"

	// HostEnvKey overrides the host of the test database server
	HostEnvKey = "TEST_POSTGRES_HOST"
	// PortEnvKey overrides the port of the test database server
	PortEnvKey = "TEST_POSTGRES_PORT"
	// UserEnvKey overrides the admin user of the test database server
	UserEnvKey = "TEST_POSTGRES_USER"
	// PasswordPathEnvKey overrides the password file of the admin user
	PasswordPathEnvKey = "TEST_POSTGRES_PASSWORD_PATH"
)

// DBInitializer is the function that initializes the data base for testing
type DBInitializer func(context.Context, *sql.DB) error

// EqualCount asserts that the count of rows matches the expected value given the table and WHERE query and args.
// Note that this is a simple COUNT of rows in a single table. More complex queries should be constructed by hand.
func EqualCount(t *testing.T, db *sql.DB, expected int, table string, filter squirrel.Sqlizer) int {
	var count int
	err := squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Select("COUNT(*)").
		From(table).
		Where(filter).
		RunWith(db).
		Scan(&count)
	require.NoError(t, err)
	require.Equal(t, expected, count)

	return count
}

// Config returns the configuration of the test database server.
// Every field can be overridden with the TEST_POSTGRES_* environment variables.
func Config(name string) config.Database {
	cfg := config.Database{
		Host:         "0.0.0.0",
		Name:         name,
		Username:     adminUser,
		PasswordPath: "./password",
		DriverName:   "postgres",
	}
	if v, ok := os.LookupEnv(HostEnvKey); ok {
		cfg.Host = v
	}
	if v, ok := os.LookupEnv(PortEnvKey); ok {
		port, err := strconv.ParseUint(v, 10, 32)
		if err == nil {
			cfg.Port = uint32(port)
		}
	}
	if v, ok := os.LookupEnv(UserEnvKey); ok {
		cfg.Username = v
	}
	if v, ok := os.LookupEnv(PasswordPathEnvKey); ok {
		cfg.PasswordPath = v
	}
	if _, err := os.Stat(cfg.PasswordPath); err != nil {
		cfg.PasswordPath = ""
	}
	return cfg
}

// GetDatabase creates a fresh database for the test and returns its name and connection.
// The test is skipped when the database server is not reachable or in short mode.
func GetDatabase(t *testing.T, init DBInitializer) (name string, testDB *sql.DB) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	name = cdb.GenerateSQLName()
	require.NoError(t, validation.SQLIdentifier(name))

	testDB, err := connectDB(name)
	if err != nil {
		t.Skipf("test database is not available: %v", err)
		return "", nil
	}
	t.Cleanup(func() {
		_ = testDB.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = init(ctx, testDB)
	if err != nil {
		t.Fatalf("Can't initialize the database `%s`: %v", name, err)
		return "", nil
	}
	return name, testDB
}

// GetPool opens a pgx pool to a database created with GetDatabase
func GetPool(t *testing.T, name string) *pgxpool.Pool {
	cfg := Config(name)
	connStr, err := cfg.GetConnectionString()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func connectDB(name string) (db *sql.DB, err error) {
	cfg := Config(defaultDBName)
	adminConnStr, err := cfg.GetConnectionString()
	if err != nil {
		return nil, err
	}

	adminDB, err := sql.Open(cfg.DriverName, adminConnStr)
	if err != nil {
		return nil, err
	}
	defer adminDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = adminDB.PingContext(ctx)
	if err != nil {
		return nil, err
	}

	_, err = adminDB.ExecContext(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", name))
	if err != nil {
		return nil, err
	}

	_, err = adminDB.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", name))
	if err != nil {
		return nil, err
	}

	cfg.Name = name
	connStr, err := cfg.GetConnectionString()
	if err != nil {
		return nil, err
	}

	return sql.Open(cfg.DriverName, connStr)
}
