package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultReorderLevel = 5
	DateLayout          = "2006-01-02"
)

type BillKind string

const (
	KindSale     BillKind = "Sale"
	KindPurchase BillKind = "Purchase"
)

var BillKinds = []BillKind{KindSale, KindPurchase}

func ParseBillKind(raw string) (BillKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sale", "sales":
		return KindSale, nil
	case "purchase", "purchases":
		return KindPurchase, nil
	}
	return "", &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown bill kind %q", raw)}
}

func (k BillKind) Valid() bool {
	return k == KindSale || k == KindPurchase
}

// StockSign is the direction a line quantity moves stock: sales deplete, purchases replenish.
func (k BillKind) StockSign() int {
	if k == KindSale {
		return -1
	}
	return 1
}

// NormalizeKey maps an item name to its identity key.
func NormalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type InventoryItem struct {
	Key          string          `json:"key"`
	Name         string          `json:"name"`
	Stock        int             `json:"stock"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	Category     *string         `json:"category,omitempty"`
	ReorderLevel int             `json:"reorder_level"`
}

func (i InventoryItem) Value() decimal.Decimal {
	return i.CostPrice.Mul(decimal.NewFromInt(int64(i.Stock)))
}

func (i InventoryItem) IsLow() bool {
	return i.Stock <= i.ReorderLevel
}

type Bill struct {
	ID           int64           `json:"id"`
	SequenceNo   int             `json:"bill_no"`
	Kind         BillKind        `json:"kind"`
	Counterparty string          `json:"counterparty"`
	Mode         string          `json:"mode"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	Date         string          `json:"date"`
	Lines        []BillLine      `json:"lines"`
}

type BillLine struct {
	ID        int64           `json:"id"`
	BillID    int64           `json:"bill_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	CostPrice decimal.Decimal `json:"cost_price"`
}

func (l BillLine) Profit() decimal.Decimal {
	return l.Total.Sub(l.CostPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
}

func (b Bill) Clone() Bill {
	out := b
	out.Lines = append([]BillLine(nil), b.Lines...)
	return out
}

func (b Bill) TotalQuantity() int {
	total := 0
	for _, line := range b.Lines {
		total += line.Quantity
	}
	return total
}

// ItemsSummary renders the first line name plus a count of the rest, e.g. "Widget (+2 more)".
func (b Bill) ItemsSummary() string {
	if len(b.Lines) == 0 {
		return ""
	}
	first := b.Lines[0].Name
	if len(b.Lines) == 1 {
		return first
	}
	return fmt.Sprintf("%s (+%d more)", first, len(b.Lines)-1)
}

type LineInput struct {
	Name     string          `json:"name"`
	Quantity int             `json:"qty"`
	Price    decimal.Decimal `json:"price"`
}

func (l LineInput) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type BillDraft struct {
	Kind         BillKind    `json:"kind"`
	Counterparty string      `json:"counterparty"`
	Mode         string      `json:"mode"`
	Lines        []LineInput `json:"lines"`
}

func (d BillDraft) Normalize() BillDraft {
	out := BillDraft{
		Kind:         d.Kind,
		Counterparty: strings.TrimSpace(d.Counterparty),
		Mode:         strings.TrimSpace(d.Mode),
		Lines:        make([]LineInput, 0, len(d.Lines)),
	}
	for _, line := range d.Lines {
		line.Name = strings.TrimSpace(line.Name)
		out.Lines = append(out.Lines, line)
	}
	return out
}

func (d BillDraft) Validate() error {
	if !d.Kind.Valid() {
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown bill kind %q", d.Kind)}
	}
	if strings.TrimSpace(d.Counterparty) == "" {
		return &ValidationError{Field: "counterparty", Message: "is required"}
	}
	if strings.TrimSpace(d.Mode) == "" {
		return &ValidationError{Field: "mode", Message: "is required"}
	}
	if len(d.Lines) == 0 {
		return &ValidationError{Field: "lines", Message: "at least one line is required"}
	}
	for i, line := range d.Lines {
		if strings.TrimSpace(line.Name) == "" {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].name", i), Message: "is required"}
		}
		if line.Price.IsNegative() {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].price", i), Message: "cannot be negative"}
		}
	}
	return nil
}

func (d BillDraft) GrandTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range d.Lines {
		total = total.Add(line.Total())
	}
	return total
}

type StockShortage struct {
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func (s StockShortage) String() string {
	return fmt.Sprintf("%s: requested %d, available %d", s.Name, s.Requested, s.Available)
}

type BusinessProfile struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	TaxID   string `json:"tax_id"`
}

type InventoryImportRow struct {
	Name         string
	Stock        int
	CostPrice    decimal.Decimal
	SalePrice    decimal.Decimal
	Category     *string
	ReorderLevel *int
}

type InventorySummary struct {
	TotalItems int             `json:"total_items"`
	TotalStock int             `json:"total_stock"`
	Value      decimal.Decimal `json:"inventory_value"`
	LowStock   int             `json:"low_stock"`
}

type ItemSales struct {
	Name    string          `json:"name"`
	Units   int             `json:"units_sold"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

type CustomerTotal struct {
	Name  string          `json:"name"`
	Bills int             `json:"bills"`
	Spent decimal.Decimal `json:"spent"`
}

type MonthlySummary struct {
	Month         string          `json:"month"`
	PurchaseTotal decimal.Decimal `json:"purchase_total"`
	SalesTotal    decimal.Decimal `json:"sales_total"`
	Profit        decimal.Decimal `json:"profit"`
	BillCount     int             `json:"bill_count"`
}

type BillingSummary struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	Net            decimal.Decimal `json:"net"`
	Today          decimal.Decimal `json:"today_sales"`
	MonthToDate    decimal.Decimal `json:"month_sales"`
	Profit         decimal.Decimal `json:"profit"`
}

type PartyLedger struct {
	Name      string          `json:"name"`
	Sales     decimal.Decimal `json:"sales"`
	Purchases decimal.Decimal `json:"purchases"`
	Balance   decimal.Decimal `json:"balance"`
	Bills     int             `json:"bills"`
}
