// Package testutils provides shared helpers for integration tests.
//
// Database-backed tests run each case inside a transaction that is rolled
// back when the test completes, so tests can run in parallel against the
// same database without interfering with each other and without manual
// cleanup.
package testutils

import (
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// migrationsRunOnce ensures migrations are only run once across all tests.
var migrationsRunOnce sync.Once

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return os.Getenv("DATABASE_URL") != ""
}

// GetTestDB opens a connection to the test database named by DATABASE_URL and
// applies all migrations. Tests that call it are skipped when DATABASE_URL is
// unset, so the unit suite stays runnable without infrastructure.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if !IsIntegrationTestEnvironment() {
		t.Skip("skipping integration test: DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", os.Getenv("DATABASE_URL"))
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, db.Ping(), "failed to ping test database")

	t.Cleanup(func() { _ = db.Close() })

	migrationsRunOnce.Do(func() {
		require.NoError(t, goose.SetDialect("postgres"))
		require.NoError(t, goose.Up(db, migrationsDir(t)), "failed to apply migrations")
	})

	return db
}

// WithTx runs fn inside a transaction that is always rolled back, giving the
// test a writable yet isolated view of the database.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin test transaction")
	defer func() { _ = tx.Rollback() }()

	fn(t, tx)
}

// migrationsDir locates the migrations directory relative to this source file.
func migrationsDir(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok, "failed to locate caller for migrations dir")

	return filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations")
}
