package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"billing/internal/db"
	"billing/internal/db/dbtest"
	"billing/internal/domain"

	"github.com/shopspring/decimal"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	return New(dbtest.Open(t), db.SQLite)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRebind(t *testing.T) {
	pg := conn{dialect: db.Postgres}
	got := pg.rebind("SELECT * FROM bills WHERE type = ? AND date BETWEEN ? AND ?")
	want := "SELECT * FROM bills WHERE type = $1 AND date BETWEEN $2 AND $3"
	if got != want {
		t.Fatalf("rebind = %q", got)
	}
	lite := conn{dialect: db.SQLite}
	if q := lite.rebind("SELECT ?"); q != "SELECT ?" {
		t.Fatalf("sqlite rebind changed query: %q", q)
	}
}

func TestNextSequencePerKind(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for want := 1; want <= 3; want++ {
		got, err := repo.NextSequence(ctx, domain.KindSale)
		if err != nil {
			t.Fatalf("NextSequence: %v", err)
		}
		if got != want {
			t.Fatalf("sale sequence = %d, want %d", got, want)
		}
	}
	got, err := repo.NextSequence(ctx, domain.KindPurchase)
	if err != nil || got != 1 {
		t.Fatalf("purchase sequence = %d, %v; want 1", got, err)
	}

	counters, err := repo.Counters(ctx)
	if err != nil {
		t.Fatalf("Counters: %v", err)
	}
	if counters[domain.KindSale] != 3 || counters[domain.KindPurchase] != 1 {
		t.Fatalf("counters = %v", counters)
	}
}

func TestGetOrCreateItem(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	item, created, err := repo.GetOrCreateItem(ctx, "  Blue Widget ")
	if err != nil {
		t.Fatalf("GetOrCreateItem: %v", err)
	}
	if !created || item.Key != "blue widget" || item.Name != "Blue Widget" {
		t.Fatalf("provisioned item = %+v, created=%v", item, created)
	}
	if item.Stock != 0 || !item.CostPrice.IsZero() || item.ReorderLevel != domain.DefaultReorderLevel {
		t.Fatalf("provisioned defaults = %+v", item)
	}

	again, created, err := repo.GetOrCreateItem(ctx, "BLUE WIDGET")
	if err != nil || created {
		t.Fatalf("second lookup created=%v err=%v", created, err)
	}
	if again.Name != "Blue Widget" {
		t.Fatalf("second lookup name = %q", again.Name)
	}
}

func TestItemWrites(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	widget := domain.InventoryItem{
		Key: "widget", Name: "Widget", Stock: 3,
		CostPrice: dec("4"), SalePrice: dec("6.5"), ReorderLevel: 2,
	}
	if err := repo.InsertItem(ctx, widget); err != nil {
		t.Fatalf("InsertItem: %v", err)
	}
	if err := repo.InsertItem(ctx, widget); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate insert error = %v, want ErrConflict", err)
	}

	if err := repo.AddStock(ctx, "WIDGET", -5); err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	got, err := repo.GetItem(ctx, "widget")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Stock != -2 || !got.SalePrice.Equal(dec("6.5")) {
		t.Fatalf("item after AddStock = %+v", got)
	}

	if err := repo.AddStock(ctx, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("AddStock missing = %v", err)
	}

	renamed := got
	renamed.Key, renamed.Name = "gadget", "Gadget"
	if err := repo.UpdateItem(ctx, "widget", renamed); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if _, err := repo.GetItem(ctx, "widget"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old key still present: %v", err)
	}

	if err := repo.DeleteItem(ctx, "gadget"); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if err := repo.DeleteItem(ctx, "gadget"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeleteItem = %v", err)
	}
}

func TestBillRoundTripAndReports(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	tx, err := repo.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	bill, err := tx.InsertBill(ctx, domain.Bill{
		SequenceNo:   1,
		Kind:         domain.KindSale,
		Counterparty: "Asha",
		Mode:         "Cash",
		GrandTotal:   dec("25"),
		Date:         "2024-03-05",
		Lines: []domain.BillLine{
			{Name: "Widget", Quantity: 2, Price: dec("10"), Total: dec("20"), CostPrice: dec("4")},
			{Name: "widget ", Quantity: 1, Price: dec("5"), Total: dec("5"), CostPrice: dec("4")},
		},
	})
	if err != nil {
		t.Fatalf("InsertBill: %v", err)
	}
	if _, err := tx.InsertBill(ctx, domain.Bill{SequenceNo: 1, Kind: domain.KindSale, Counterparty: "B", Mode: "Cash", Date: "2024-03-06"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate bill number error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	stored, err := repo.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	if len(stored.Lines) != 2 || stored.Lines[0].ID == 0 || !stored.GrandTotal.Equal(dec("25")) {
		t.Fatalf("stored bill = %+v", stored)
	}

	profit, err := repo.TotalProfit(ctx, Period{})
	if err != nil {
		t.Fatalf("TotalProfit: %v", err)
	}
	if !profit.Equal(dec("13")) {
		t.Fatalf("profit = %s, want 13", profit)
	}

	byItem, err := repo.SalesByItem(ctx, Period{From: "2024-03-01", To: "2024-03-31"})
	if err != nil {
		t.Fatalf("SalesByItem: %v", err)
	}
	if len(byItem) != 1 || byItem[0].Units != 3 || !byItem[0].Revenue.Equal(dec("25")) {
		t.Fatalf("sales by item = %+v", byItem)
	}

	none, err := repo.KindTotal(ctx, domain.KindSale, Period{From: "2024-04-01"})
	if err != nil || !none.IsZero() {
		t.Fatalf("KindTotal outside period = %s, %v", none, err)
	}

	months, err := repo.MonthlySummary(ctx, 0)
	if err != nil {
		t.Fatalf("MonthlySummary: %v", err)
	}
	if len(months) != 1 || months[0].Month != "2024-03" || months[0].BillCount != 1 || !months[0].Profit.Equal(dec("13")) {
		t.Fatalf("monthly = %+v", months)
	}

	if err := repo.DeleteBill(ctx, bill.ID); err != nil {
		t.Fatalf("DeleteBill: %v", err)
	}
	if _, err := repo.GetBill(ctx, bill.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetBill after delete = %v", err)
	}
	refs, err := repo.CountItemReferences(ctx, "Widget")
	if err != nil || refs != 0 {
		t.Fatalf("references after delete = %d, %v", refs, err)
	}
}

func TestProfileUpsert(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.SaveProfile(ctx, domain.BusinessProfile{Name: "Shop", Phone: "123"}); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if err := repo.SaveProfile(ctx, domain.BusinessProfile{Name: "Shop & Co", TaxID: "GST1"}); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	got, err := repo.LoadProfile(ctx)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	want := domain.BusinessProfile{Name: "Shop & Co", TaxID: "GST1"}
	if got != want {
		t.Fatalf("profile = %+v, want %+v", got, want)
	}
}

func TestReadsBillsWithoutParty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "old.db")
	seed, err := db.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	for _, stmt := range []string{
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
		`INSERT INTO bills (bill_no, type, customer, mode, grand_total) VALUES (1, 'Sale', NULL, NULL, 15)`,
		`INSERT INTO bill_items (bill_id, name, qty, price, total) VALUES (1, 'Tea', 3, 5, 15)`,
	} {
		if _, err := seed.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	seed.Close()

	repo := New(dbtest.OpenAt(t, path), db.SQLite)

	bills, err := repo.ListBills(ctx)
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(bills) != 1 || bills[0].Counterparty != "" || bills[0].Mode != "" || len(bills[0].Lines) != 1 {
		t.Fatalf("bills = %+v", bills)
	}
	if !bills[0].Lines[0].CostPrice.IsZero() {
		t.Fatalf("line cost = %s, want 0", bills[0].Lines[0].CostPrice)
	}

	customers, err := repo.CustomerTotals(ctx, Period{})
	if err != nil {
		t.Fatalf("CustomerTotals: %v", err)
	}
	if len(customers) != 1 || customers[0].Name != "" || !customers[0].Spent.Equal(dec("15")) {
		t.Fatalf("customers = %+v", customers)
	}
}
