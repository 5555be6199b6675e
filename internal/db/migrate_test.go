package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestRunMigrationsIsRepeatable(t *testing.T) {
	ctx := context.Background()
	conn, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "nested", "app.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer conn.Close()

	for i := 0; i < 2; i++ {
		if err := RunMigrations(ctx, conn, SQLite, zerolog.Nop()); err != nil {
			t.Fatalf("RunMigrations pass %d: %v", i+1, err)
		}
	}

	for _, table := range []string{"business_profile", "inventory", "bills", "bill_items", "bill_counters"} {
		var count int
		if err := conn.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&count); err != nil {
			t.Fatalf("lookup %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("table %s missing", table)
		}
	}
}

func TestRunMigrationsSeedsCountersFromExistingBills(t *testing.T) {
	ctx := context.Background()
	conn, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "legacy.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer conn.Close()

	legacy := []string{
		`CREATE TABLE bills (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bill_no INTEGER, type TEXT, customer TEXT, mode TEXT,
			grand_total REAL, date TEXT
		)`,
		`INSERT INTO bills (bill_no, type, customer, mode, grand_total, date) VALUES
			(1, 'Sale', 'A', 'Cash', 10, '2024-01-01'),
			(7, 'Sale', 'B', 'Cash', 10, '2024-01-02'),
			(3, 'Purchase', 'C', 'Credit', 10, '2024-01-03')`,
	}
	for _, stmt := range legacy {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seed legacy schema: %v", err)
		}
	}

	if err := RunMigrations(ctx, conn, SQLite, zerolog.Nop()); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	want := map[string]int{"Sale": 7, "Purchase": 3}
	for kind, last := range want {
		var got int
		if err := conn.QueryRowContext(ctx, "SELECT last_no FROM bill_counters WHERE kind = ?", kind).Scan(&got); err != nil {
			t.Fatalf("read counter %s: %v", kind, err)
		}
		if got != last {
			t.Errorf("counter %s = %d, want %d", kind, got, last)
		}
	}
}

func TestRunMigrationsUpgradesPreColumnSchema(t *testing.T) {
	ctx := context.Background()
	conn, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "old.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer conn.Close()

	old := []string{
		`CREATE TABLE inventory (name_key TEXT PRIMARY KEY, name TEXT NOT NULL, stock INTEGER NOT NULL DEFAULT 0)`,
		`CREATE TABLE bills (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bill_no INTEGER NOT NULL, type TEXT NOT NULL, customer TEXT, mode TEXT,
			grand_total REAL NOT NULL
		)`,
		`CREATE TABLE bill_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bill_id INTEGER NOT NULL, name TEXT NOT NULL, qty INTEGER NOT NULL,
			price REAL NOT NULL, total REAL NOT NULL
		)`,
		`INSERT INTO inventory (name_key, name, stock) VALUES ('tea', 'Tea', 4)`,
		`INSERT INTO bills (bill_no, type, customer, mode, grand_total) VALUES (2, 'Sale', NULL, NULL, 20)`,
		`INSERT INTO bill_items (bill_id, name, qty, price, total) VALUES (1, 'Tea', 2, 10, 20)`,
	}
	for _, stmt := range old {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seed old schema: %v", err)
		}
	}

	for i := 0; i < 2; i++ {
		if err := RunMigrations(ctx, conn, SQLite, zerolog.Nop()); err != nil {
			t.Fatalf("RunMigrations pass %d: %v", i+1, err)
		}
	}

	var (
		reorder int
		cost    float64
		date    string
		last    int
	)
	if err := conn.QueryRowContext(ctx,
		"SELECT reorder_level, cost_price FROM inventory WHERE name_key = 'tea'",
	).Scan(&reorder, &cost); err != nil {
		t.Fatalf("read inventory: %v", err)
	}
	if reorder != 5 || cost != 0 {
		t.Errorf("inventory defaults = %d, %v", reorder, cost)
	}
	if err := conn.QueryRowContext(ctx, "SELECT date FROM bills WHERE id = 1").Scan(&date); err != nil {
		t.Fatalf("read bill date: %v", err)
	}
	if len(date) != len("2006-01-02") {
		t.Errorf("bill date not backfilled: %q", date)
	}
	if err := conn.QueryRowContext(ctx, "SELECT cost_price FROM bill_items WHERE id = 1").Scan(&cost); err != nil {
		t.Fatalf("read line cost: %v", err)
	}
	if err := conn.QueryRowContext(ctx, "SELECT last_no FROM bill_counters WHERE kind = 'Sale'").Scan(&last); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if last != 2 {
		t.Errorf("sale counter = %d, want 2", last)
	}

	var indexes int
	if err := conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_bills_date'",
	).Scan(&indexes); err != nil {
		t.Fatalf("lookup index: %v", err)
	}
	if indexes != 1 {
		t.Error("idx_bills_date missing")
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, _, err := Open(context.Background(), "", ""); err == nil {
		t.Fatal("expected error for empty sqlite path")
	}
}
