package excel

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"billing/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const maxColumnWidth = 60

var (
	BillHeaders      = []string{"S.No", "BillNo", "Date", "Type", "Customer", "Items (name x qty)", "QtyTotal", "PriceSummary", "Mode", "Grand Total"}
	InventoryHeaders = []string{"S.No", "Product Name", "Category", "Stock", "Reorder Lvl", "Cost Price", "Sale Price"}
	SalesHeaders     = []string{"Item Name", "Units Sold", "Total Revenue", "Total Cost", "Total Profit"}
	CustomerHeaders  = []string{"Customer Name", "Total Bills", "Total Spent"}
)

func WriteBills(w io.Writer, bills []domain.Bill, currency string) error {
	rows := make([][]any, 0, len(bills))
	for idx, bill := range bills {
		items := make([]string, 0, len(bill.Lines))
		prices := make([]string, 0, len(bill.Lines))
		for _, line := range bill.Lines {
			items = append(items, fmt.Sprintf("%s x%d", line.Name, line.Quantity))
			prices = append(prices, domain.FormatMoney(currency, line.Price))
		}
		rows = append(rows, []any{
			idx + 1,
			bill.SequenceNo,
			bill.Date,
			string(bill.Kind),
			bill.Counterparty,
			strings.Join(items, "; "),
			bill.TotalQuantity(),
			strings.Join(prices, "; "),
			bill.Mode,
			number(bill.GrandTotal),
		})
	}
	return writeSheet(w, "Bills", BillHeaders, rows)
}

func WriteInventory(w io.Writer, items []domain.InventoryItem) error {
	rows := make([][]any, 0, len(items))
	for idx, item := range items {
		category := "N/A"
		if item.Category != nil {
			category = *item.Category
		}
		rows = append(rows, []any{
			idx + 1,
			item.Name,
			category,
			item.Stock,
			item.ReorderLevel,
			number(item.CostPrice),
			number(item.SalePrice),
		})
	}
	return writeSheet(w, "Inventory", InventoryHeaders, rows)
}

func WriteSalesReport(w io.Writer, report []domain.ItemSales) error {
	rows := make([][]any, 0, len(report))
	for _, item := range report {
		rows = append(rows, []any{
			item.Name,
			item.Units,
			number(item.Revenue),
			number(item.Cost),
			number(item.Profit),
		})
	}
	return writeSheet(w, "Sales Report", SalesHeaders, rows)
}

func WriteCustomers(w io.Writer, customers []domain.CustomerTotal) error {
	rows := make([][]any, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []any{c.Name, c.Bills, number(c.Spent)})
	}
	return writeSheet(w, "Customers", CustomerHeaders, rows)
}

func writeSheet(w io.Writer, sheet string, headers []string, rows [][]any) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	widths := make([]int, len(headers))
	header := make([]any, len(headers))
	for idx, h := range headers {
		header[idx] = h
		widths[idx] = utf8.RuneCountInString(h)
	}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := file.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for idx, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", idx+2, err)
		}
		for col, value := range row {
			if col < len(widths) {
				widths[col] = max(widths[col], utf8.RuneCountInString(fmt.Sprint(value)))
			}
		}
	}

	for idx, width := range widths {
		name, err := excelize.ColumnNumberToName(idx + 1)
		if err != nil {
			return err
		}
		if err := file.SetColWidth(sheet, name, name, float64(min(width+2, maxColumnWidth))); err != nil {
			return fmt.Errorf("size column %s: %w", name, err)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func number(value decimal.Decimal) float64 {
	return value.Round(2).InexactFloat64()
}
