package excel

import (
	"bytes"
	"strings"
	"testing"

	"billing/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	file := excelize.NewFile()
	defer file.Close()
	for idx, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, idx+1)
		if err := file.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return &buf
}

func TestParseInventoryRowsAliases(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Item", "Qty", "Cost_Price", "Sell Price", "Category", "Reorder Level"},
		{" Widget ", "12", "4.50", "7", "Tools", "3"},
		{"", "1", "1", "", "", ""},
		{"Gadget", "1,200", "2", "", "", ""},
	})

	rows, err := ParseInventoryRows(buf)
	if err != nil {
		t.Fatalf("ParseInventoryRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	widget := rows[0]
	if widget.Name != "Widget" || widget.Stock != 12 || !widget.CostPrice.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("widget = %+v", widget)
	}
	if !widget.SalePrice.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("sale price = %s", widget.SalePrice)
	}
	if widget.Category == nil || *widget.Category != "Tools" {
		t.Fatalf("category = %v", widget.Category)
	}
	if widget.ReorderLevel == nil || *widget.ReorderLevel != 3 {
		t.Fatalf("reorder = %v", widget.ReorderLevel)
	}

	gadget := rows[1]
	if gadget.Stock != 1200 || gadget.Category != nil || gadget.ReorderLevel != nil || !gadget.SalePrice.IsZero() {
		t.Fatalf("gadget = %+v", gadget)
	}
}

func TestParseInventoryRowsErrors(t *testing.T) {
	cases := []struct {
		name string
		rows [][]any
		want string
	}{
		{"missing column", [][]any{{"Name", "Stock"}, {"Widget", "1"}}, "missing required column: cost_price"},
		{"bad stock", [][]any{{"Name", "Stock", "Cost"}, {"Widget", "1.5", "2"}}, "row 2 invalid stock"},
		{"bad cost", [][]any{{"Name", "Stock", "Cost"}, {"Widget", "1", "abc"}}, "row 2 invalid cost price"},
		{"no data", [][]any{{"Name", "Stock", "Cost"}}, "no valid data rows"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseInventoryRows(buildWorkbook(t, tc.rows))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestWriteInventoryRoundTrip(t *testing.T) {
	tools := "Tools"
	items := []domain.InventoryItem{
		{Key: "gadget", Name: "Gadget", Stock: -2, CostPrice: decimal.NewFromInt(3), ReorderLevel: 5},
		{Key: "widget", Name: "Widget", Stock: 8, CostPrice: decimal.RequireFromString("4.25"), SalePrice: decimal.NewFromInt(9), Category: &tools, ReorderLevel: 2},
	}

	var buf bytes.Buffer
	if err := WriteInventory(&buf, items); err != nil {
		t.Fatalf("WriteInventory: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer file.Close()

	if got := file.GetSheetList(); len(got) != 1 || got[0] != "Inventory" {
		t.Fatalf("sheets = %v", got)
	}
	rows, err := file.GetRows("Inventory")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if strings.Join(rows[0], "|") != strings.Join(InventoryHeaders, "|") {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][2] != "N/A" || rows[2][2] != "Tools" {
		t.Fatalf("categories = %q %q", rows[1][2], rows[2][2])
	}

	width, err := file.GetColWidth("Inventory", "B")
	if err != nil {
		t.Fatalf("GetColWidth: %v", err)
	}
	if width != float64(len("Product Name")+2) {
		t.Fatalf("column B width = %v", width)
	}

	parsed, err := ParseInventoryRows(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ParseInventoryRows: %v", err)
	}
	if len(parsed) != 2 || parsed[1].Name != "Widget" || parsed[1].Stock != 8 || !parsed[1].CostPrice.Equal(decimal.RequireFromString("4.25")) {
		t.Fatalf("parsed = %+v", parsed)
	}
	if parsed[0].Category == nil || *parsed[0].Category != "N/A" {
		t.Fatalf("exported placeholder category should round trip as text, got %v", parsed[0].Category)
	}
}

func TestWriteBills(t *testing.T) {
	bills := []domain.Bill{{
		ID: 1, SequenceNo: 4, Kind: domain.KindSale, Counterparty: "Asha", Mode: "Cash",
		GrandTotal: decimal.NewFromInt(1250), Date: "2024-05-14",
		Lines: []domain.BillLine{
			{Name: "Widget", Quantity: 2, Price: decimal.NewFromInt(500), Total: decimal.NewFromInt(1000)},
			{Name: "Gadget", Quantity: 1, Price: decimal.NewFromInt(250), Total: decimal.NewFromInt(250)},
		},
	}}

	var buf bytes.Buffer
	if err := WriteBills(&buf, bills, "Rs."); err != nil {
		t.Fatalf("WriteBills: %v", err)
	}
	file, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows("Bills")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	row := rows[1]
	if row[1] != "4" || row[3] != "Sale" || row[5] != "Widget x2; Gadget x1" || row[6] != "3" {
		t.Fatalf("row = %v", row)
	}
	if row[7] != "Rs. 500.00; Rs. 250.00" || row[9] != "1250" {
		t.Fatalf("money cells = %q %q", row[7], row[9])
	}

	styleID, err := file.GetCellStyle("Bills", "A1")
	if err != nil {
		t.Fatalf("GetCellStyle: %v", err)
	}
	style, err := file.GetStyle(styleID)
	if err != nil {
		t.Fatalf("GetStyle: %v", err)
	}
	if style.Font == nil || !style.Font.Bold || style.Alignment == nil || style.Alignment.Horizontal != "center" {
		t.Fatalf("header style = %+v", style)
	}
}

func TestWriteReportsCapsColumnWidth(t *testing.T) {
	long := strings.Repeat("x", 80)
	var buf bytes.Buffer
	err := WriteSalesReport(&buf, []domain.ItemSales{{Name: long, Units: 3, Revenue: decimal.NewFromInt(30), Cost: decimal.NewFromInt(12), Profit: decimal.NewFromInt(18)}})
	if err != nil {
		t.Fatalf("WriteSalesReport: %v", err)
	}
	file, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer file.Close()
	width, _ := file.GetColWidth("Sales Report", "A")
	if width != maxColumnWidth {
		t.Fatalf("width = %v, want %d", width, maxColumnWidth)
	}

	buf.Reset()
	if err := WriteCustomers(&buf, []domain.CustomerTotal{{Name: "Asha", Bills: 2, Spent: decimal.NewFromInt(75)}}); err != nil {
		t.Fatalf("WriteCustomers: %v", err)
	}
	customers, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer customers.Close()
	rows, _ := customers.GetRows("Customers")
	if len(rows) != 2 || rows[1][0] != "Asha" || rows[1][1] != "2" || rows[1][2] != "75" {
		t.Fatalf("rows = %v", rows)
	}
}
