package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

type legacyColumn struct {
	table      string
	column     string
	definition string
}

// Columns that older business_app.db files were created without. SQLite cannot add a
// column with a non-constant default, so bills.date starts empty and is backfilled.
var legacyColumns = []legacyColumn{
	{"inventory", "cost_price", "REAL NOT NULL DEFAULT 0"},
	{"inventory", "sale_price", "REAL NOT NULL DEFAULT 0"},
	{"inventory", "category", "TEXT"},
	{"inventory", "reorder_level", "INTEGER NOT NULL DEFAULT 5"},
	{"bills", "date", "TEXT NOT NULL DEFAULT ''"},
	{"bill_items", "cost_price", "REAL NOT NULL DEFAULT 0"},
}

func sqliteGoMigrations() []*goose.Migration {
	return []*goose.Migration{
		goose.NewGoMigration(3, &goose.GoFunc{RunTx: addLegacyColumns}, &goose.GoFunc{RunTx: dropBillDateIndex}),
	}
}

func addLegacyColumns(ctx context.Context, tx *sql.Tx) error {
	for _, col := range legacyColumns {
		exists, err := hasColumn(ctx, tx, col.table, col.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", col.table, col.column, col.definition)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add %s.%s: %w", col.table, col.column, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bills SET date = date('now', 'localtime') WHERE date IS NULL OR date = ''`,
	); err != nil {
		return fmt.Errorf("backfill bill dates: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_bills_date ON bills (date)`); err != nil {
		return fmt.Errorf("create bill date index: %w", err)
	}
	return nil
}

func dropBillDateIndex(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP INDEX IF EXISTS idx_bills_date`)
	return err
}

func hasColumn(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("inspect %s.%s: %w", table, column, err)
	}
	return count > 0, nil
}
