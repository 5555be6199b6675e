package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"billing/internal/db"
	"billing/internal/db/dbtest"
	"billing/internal/domain"
	"billing/internal/ledger"
	"billing/internal/mirror"
	"billing/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func newService(t *testing.T) *Service {
	t.Helper()
	repo := repository.New(dbtest.Open(t), db.SQLite)
	m := mirror.New()
	if err := m.Reload(context.Background(), repo); err != nil {
		t.Fatalf("reload: %v", err)
	}
	return New(ledger.New(repo, m, zerolog.Nop()), repo, "")
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedBills(t *testing.T, svc *Service) (domain.Bill, domain.Bill) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.AddProduct(ctx, ledger.ProductInput{Name: "Widget", Stock: 10, CostPrice: dec("4"), SalePrice: dec("10")}); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	sold, err := svc.CreateBill(ctx, domain.BillDraft{
		Kind: domain.KindSale, Counterparty: "Asha", Mode: "Cash",
		Lines: []domain.LineInput{{Name: "widget", Quantity: 2, Price: dec("10")}},
	})
	if err != nil {
		t.Fatalf("CreateBill sale: %v", err)
	}
	bought, err := svc.CreateBill(ctx, domain.BillDraft{
		Kind: domain.KindPurchase, Counterparty: "asha", Mode: "Credit",
		Lines: []domain.LineInput{{Name: "Widget", Quantity: 5, Price: dec("3")}},
	})
	if err != nil {
		t.Fatalf("CreateBill purchase: %v", err)
	}
	return sold.Bill, bought.Bill
}

func TestSummaryAndLedger(t *testing.T) {
	svc := newService(t)
	seedBills(t, svc)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	checks := map[string][2]decimal.Decimal{
		"sales":     {summary.TotalSales, dec("20")},
		"purchases": {summary.TotalPurchases, dec("15")},
		"net":       {summary.Net, dec("5")},
		"today":     {summary.Today, dec("20")},
		"month":     {summary.MonthToDate, dec("20")},
		"profit":    {summary.Profit, dec("12")},
	}
	for name, pair := range checks {
		if !pair[0].Equal(pair[1]) {
			t.Errorf("%s = %s, want %s", name, pair[0], pair[1])
		}
	}

	ledgerRow, err := svc.PartyLedger(" ASHA ")
	if err != nil {
		t.Fatalf("PartyLedger: %v", err)
	}
	if ledgerRow.Bills != 2 || !ledgerRow.Balance.Equal(dec("5")) {
		t.Fatalf("ledger = %+v", ledgerRow)
	}
	if _, err := svc.PartyLedger(" "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank party err = %v", err)
	}
}

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{"", "", true},
		{"2024-01-01", "", true},
		{"2024-01-01", "2024-01-31", true},
		{"2024-02-01", "2024-01-31", false},
		{"01/02/2024", "", false},
		{"", "2024-13-01", false},
	}
	for _, tc := range cases {
		_, err := ParsePeriod(tc.from, tc.to)
		if tc.ok && err != nil {
			t.Errorf("ParsePeriod(%q, %q) = %v", tc.from, tc.to, err)
		}
		if !tc.ok && !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("ParsePeriod(%q, %q) err = %v, want invalid input", tc.from, tc.to, err)
		}
	}
}

func TestListAndGetBills(t *testing.T) {
	svc := newService(t)
	sold, bought := seedBills(t, svc)

	bills, err := svc.ListBills(mirror.BillFilter{Kind: domain.KindSale})
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(bills) != 1 || bills[0].ID != sold.ID {
		t.Fatalf("sale bills = %+v", bills)
	}

	all, err := svc.ListBills(mirror.BillFilter{Text: "widget"})
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(all) != 2 || all[0].ID != bought.ID {
		t.Fatalf("bills should be newest first: %+v", all)
	}

	if _, err := svc.ListBills(mirror.BillFilter{From: "yesterday"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("bad filter err = %v", err)
	}
	if _, err := svc.GetBill(999); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("GetBill missing err = %v", err)
	}
}

func TestImportThenExportInventory(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	var empty bytes.Buffer
	if _, err := svc.ExportInventory(&empty); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("empty export err = %v", err)
	}

	book := excelize.NewFile()
	rows := [][]any{
		{"Product Name", "Stock", "Cost Price", "Sale Price"},
		{"Widget", 4, 2.5, 6},
		{"Gadget", 1, 1, 2},
	}
	for idx, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, idx+1)
		if err := book.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	var upload bytes.Buffer
	if err := book.Write(&upload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	book.Close()

	result, err := svc.ImportInventory(ctx, &upload)
	if err != nil {
		t.Fatalf("ImportInventory: %v", err)
	}
	if result.Rows != 2 || result.Created != 2 || result.Updated != 0 {
		t.Fatalf("result = %+v", result)
	}
	item, err := svc.GetItem("WIDGET")
	if err != nil || item.Stock != 4 || !item.CostPrice.Equal(dec("2.5")) {
		t.Fatalf("imported item = %+v, %v", item, err)
	}

	var out bytes.Buffer
	n, err := svc.ExportInventory(&out)
	if err != nil || n != 2 || out.Len() == 0 {
		t.Fatalf("ExportInventory = %d, %v", n, err)
	}

	if _, err := svc.ImportInventory(ctx, bytes.NewReader([]byte("not a workbook"))); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("garbage import err = %v", err)
	}
}

func TestReportExportsAndPDF(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	sold, _ := seedBills(t, svc)

	var buf bytes.Buffer
	if n, err := svc.ExportBills(&buf, mirror.BillFilter{}); err != nil || n != 2 {
		t.Fatalf("ExportBills = %d, %v", n, err)
	}
	buf.Reset()
	if n, err := svc.ExportSalesReport(ctx, &buf, repository.Period{}); err != nil || n != 1 {
		t.Fatalf("ExportSalesReport = %d, %v", n, err)
	}
	buf.Reset()
	if n, err := svc.ExportCustomers(ctx, &buf, repository.Period{}); err != nil || n != 1 {
		t.Fatalf("ExportCustomers = %d, %v", n, err)
	}
	buf.Reset()
	if _, err := svc.ExportSalesReport(ctx, &buf, repository.Period{From: "1990-01-01", To: "1990-12-31"}); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("empty period err = %v", err)
	}

	if _, err := svc.SaveProfile(ctx, domain.BusinessProfile{Name: " Corner Store "}); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if svc.Profile().Name != "Corner Store" {
		t.Fatalf("profile = %+v", svc.Profile())
	}

	buf.Reset()
	name, err := svc.BillPDF(&buf, sold.ID)
	if err != nil {
		t.Fatalf("BillPDF: %v", err)
	}
	if name != "Invoice_Sale_1.pdf" || !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("BillPDF = %q, %q", name, buf.Bytes()[:8])
	}
	if _, err := svc.BillPDF(&buf, 404); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("missing bill err = %v", err)
	}
}
