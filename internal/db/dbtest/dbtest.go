// Package dbtest opens migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"billing/internal/db"

	"github.com/rs/zerolog"
)

// Open returns a freshly migrated database in the test's temp dir.
func Open(tb testing.TB) *sql.DB {
	tb.Helper()
	return OpenAt(tb, filepath.Join(tb.TempDir(), "ledger.db"))
}

// OpenAt migrates the database at path, which may already hold data.
func OpenAt(tb testing.TB, path string) *sql.DB {
	tb.Helper()
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, path)
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	tb.Cleanup(func() { conn.Close() })

	if err := db.RunMigrations(ctx, conn, db.SQLite, zerolog.Nop()); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return conn
}
