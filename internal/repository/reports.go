package repository

import (
	"context"
	"fmt"

	"billing/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	periodStart = "0000-01-01"
	periodEnd   = "9999-12-31"
)

// Period is an inclusive date range in YYYY-MM-DD form. Empty bounds are open.
type Period struct {
	From string
	To   string
}

func (p Period) bounds() (string, string) {
	from, to := p.From, p.To
	if from == "" {
		from = periodStart
	}
	if to == "" {
		to = periodEnd
	}
	return from, to
}

// TotalProfit sums realized profit over every sale line using the cost captured on the line.
func (c conn) TotalProfit(ctx context.Context, period Period) (decimal.Decimal, error) {
	from, to := period.bounds()
	var profit decimal.Decimal
	if err := c.queryRow(ctx, `
		SELECT COALESCE(SUM(bi.total - bi.cost_price * bi.qty), 0)
		FROM bill_items bi
		JOIN bills b ON b.id = bi.bill_id
		WHERE b.type = ? AND b.date BETWEEN ? AND ?
	`, string(domain.KindSale), from, to).Scan(&profit); err != nil {
		return decimal.Zero, fmt.Errorf("total profit: %w", err)
	}
	return profit, nil
}

func (c conn) KindTotal(ctx context.Context, kind domain.BillKind, period Period) (decimal.Decimal, error) {
	from, to := period.bounds()
	var total decimal.Decimal
	if err := c.queryRow(ctx, `
		SELECT COALESCE(SUM(grand_total), 0)
		FROM bills
		WHERE type = ? AND date BETWEEN ? AND ?
	`, string(kind), from, to).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("%s total: %w", kind, err)
	}
	return total, nil
}

// SalesByItem groups sale lines by item key, most profitable first.
func (c conn) SalesByItem(ctx context.Context, period Period) ([]domain.ItemSales, error) {
	from, to := period.bounds()
	rows, err := c.query(ctx, `
		SELECT
			MIN(bi.name),
			COALESCE(SUM(bi.qty), 0),
			COALESCE(SUM(bi.total), 0),
			COALESCE(SUM(bi.cost_price * bi.qty), 0),
			COALESCE(SUM(bi.total - bi.cost_price * bi.qty), 0) AS profit
		FROM bill_items bi
		JOIN bills b ON b.id = bi.bill_id
		WHERE b.type = ? AND b.date BETWEEN ? AND ?
		GROUP BY LOWER(TRIM(bi.name))
		ORDER BY profit DESC, LOWER(TRIM(bi.name)) ASC
	`, string(domain.KindSale), from, to)
	if err != nil {
		return nil, fmt.Errorf("sales by item query: %w", err)
	}
	defer rows.Close()

	list := make([]domain.ItemSales, 0)
	for rows.Next() {
		var row domain.ItemSales
		if err := rows.Scan(&row.Name, &row.Units, &row.Revenue, &row.Cost, &row.Profit); err != nil {
			return nil, fmt.Errorf("scan sales by item: %w", err)
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales by item: %w", err)
	}
	return list, nil
}

func (c conn) CustomerTotals(ctx context.Context, period Period) ([]domain.CustomerTotal, error) {
	from, to := period.bounds()
	rows, err := c.query(ctx, `
		SELECT COALESCE(customer, '') AS name, COUNT(*), COALESCE(SUM(grand_total), 0) AS spent
		FROM bills
		WHERE type = ? AND date BETWEEN ? AND ?
		GROUP BY COALESCE(customer, '')
		ORDER BY spent DESC, name ASC
	`, string(domain.KindSale), from, to)
	if err != nil {
		return nil, fmt.Errorf("customer totals query: %w", err)
	}
	defer rows.Close()

	list := make([]domain.CustomerTotal, 0)
	for rows.Next() {
		var row domain.CustomerTotal
		if err := rows.Scan(&row.Name, &row.Bills, &row.Spent); err != nil {
			return nil, fmt.Errorf("scan customer totals: %w", err)
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer totals: %w", err)
	}
	return list, nil
}

func (c conn) MonthlySummary(ctx context.Context, limit int) ([]domain.MonthlySummary, error) {
	if limit <= 0 {
		limit = 12
	}
	if limit > 120 {
		limit = 120
	}

	rows, err := c.query(ctx, `
		WITH bill_months AS (
			SELECT
				SUBSTR(date, 1, 7) AS month,
				SUM(CASE WHEN type = ? THEN grand_total ELSE 0 END) AS purchase_total,
				SUM(CASE WHEN type = ? THEN grand_total ELSE 0 END) AS sales_total,
				COUNT(*) AS bill_count
			FROM bills
			GROUP BY SUBSTR(date, 1, 7)
		),
		sales_profit AS (
			SELECT
				SUBSTR(b.date, 1, 7) AS month,
				SUM(bi.total - bi.cost_price * bi.qty) AS profit
			FROM bills b
			JOIN bill_items bi ON bi.bill_id = b.id
			WHERE b.type = ?
			GROUP BY SUBSTR(b.date, 1, 7)
		)
		SELECT
			bm.month,
			COALESCE(bm.purchase_total, 0),
			COALESCE(bm.sales_total, 0),
			COALESCE(sp.profit, 0),
			bm.bill_count
		FROM bill_months bm
		LEFT JOIN sales_profit sp ON sp.month = bm.month
		ORDER BY bm.month DESC
		LIMIT ?
	`, string(domain.KindPurchase), string(domain.KindSale), string(domain.KindSale), limit)
	if err != nil {
		return nil, fmt.Errorf("monthly summary query: %w", err)
	}
	defer rows.Close()

	list := make([]domain.MonthlySummary, 0, limit)
	for rows.Next() {
		var row domain.MonthlySummary
		if err := rows.Scan(&row.Month, &row.PurchaseTotal, &row.SalesTotal, &row.Profit, &row.BillCount); err != nil {
			return nil, fmt.Errorf("scan monthly summary: %w", err)
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly summary: %w", err)
	}
	return list, nil
}
