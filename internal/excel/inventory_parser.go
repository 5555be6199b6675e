package excel

import (
	"fmt"
	"io"
	"strings"

	"billing/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var headerAliases = map[string]string{
	"name":           "name",
	"product name":   "name",
	"product":        "name",
	"item":           "name",
	"item name":      "name",
	"stock":          "stock",
	"quantity":       "stock",
	"qty":            "stock",
	"cost price":     "cost_price",
	"cost":           "cost_price",
	"buy price":      "cost_price",
	"purchase price": "cost_price",
	"sale price":     "sale_price",
	"sell price":     "sale_price",
	"selling price":  "sale_price",
	"mrp":            "sale_price",
	"category":       "category",
	"reorder lvl":    "reorder_level",
	"reorder level":  "reorder_level",
	"reorder":        "reorder_level",
}

// ParseInventoryRows reads the first sheet of an inventory workbook. The name, stock and
// cost price columns are required; blank names are skipped.
func ParseInventoryRows(reader io.Reader) ([]domain.InventoryImportRow, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	colMap := mapColumns(rows[0])
	for _, required := range []string{"name", "stock", "cost_price"} {
		if _, ok := colMap[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}

	result := make([]domain.InventoryImportRow, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		name := strings.TrimSpace(readCell(cells, colMap["name"]))
		if name == "" {
			continue
		}

		stock, err := parseInt(readCell(cells, colMap["stock"]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid stock: %w", index+1, err)
		}
		cost, err := parseDecimal(readCell(cells, colMap["cost_price"]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid cost price: %w", index+1, err)
		}

		salePrice := decimal.Zero
		if idx, ok := colMap["sale_price"]; ok {
			if raw := strings.TrimSpace(readCell(cells, idx)); raw != "" {
				salePrice, err = parseDecimal(raw)
				if err != nil {
					return nil, fmt.Errorf("row %d invalid sale price: %w", index+1, err)
				}
			}
		}

		var category *string
		if idx, ok := colMap["category"]; ok {
			if value := strings.TrimSpace(readCell(cells, idx)); value != "" {
				category = &value
			}
		}

		var reorder *int
		if idx, ok := colMap["reorder_level"]; ok {
			if raw := strings.TrimSpace(readCell(cells, idx)); raw != "" {
				value, err := parseInt(raw)
				if err != nil {
					return nil, fmt.Errorf("row %d invalid reorder level: %w", index+1, err)
				}
				reorder = &value
			}
		}

		result = append(result, domain.InventoryImportRow{
			Name:         name,
			Stock:        stock,
			CostPrice:    cost,
			SalePrice:    salePrice,
			Category:     category,
			ReorderLevel: reorder,
		})
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("excel file has no valid data rows")
	}
	return result, nil
}

func mapColumns(header []string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		normalized := normalizeHeader(col)
		if normalized == "" {
			continue
		}
		canonical, ok := headerAliases[normalized]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\uFEFF")
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.ReplaceAll(value, ".", "")
	return strings.Join(strings.Fields(value), " ")
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseInt(raw string) (int, error) {
	value, err := parseDecimal(raw)
	if err != nil {
		return 0, err
	}
	if !value.IsInteger() {
		return 0, fmt.Errorf("must be an integer")
	}
	return int(value.IntPart()), nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, fmt.Errorf("value is empty")
	}
	parsed, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number")
	}
	return parsed, nil
}
