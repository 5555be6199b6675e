package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

// RunMigrations applies every pending migration for the dialect. Migrations are additive,
// so a database created by an earlier release opens without data loss.
func RunMigrations(ctx context.Context, conn *sql.DB, dialect Dialect, log zerolog.Logger) error {
	var (
		gooseDialect goose.Dialect
		dir          string
		opts         []goose.ProviderOption
	)
	switch dialect {
	case SQLite:
		gooseDialect, dir = goose.DialectSQLite3, "migrations/sqlite"
		opts = append(opts, goose.WithGoMigrations(sqliteGoMigrations()...))
	case Postgres:
		gooseDialect, dir = goose.DialectPostgres, "migrations/postgres"
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}

	sub, err := fs.Sub(migrationFiles, dir)
	if err != nil {
		return fmt.Errorf("read embedded migrations: %w", err)
	}
	provider, err := goose.NewProvider(gooseDialect, conn, sub, opts...)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, result := range results {
		log.Info().
			Int64("version", result.Source.Version).
			Str("file", result.Source.Path).
			Dur("took", result.Duration).
			Msg("migration applied")
	}
	return nil
}
