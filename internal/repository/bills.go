package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"billing/internal/domain"
)

const billColumns = `id, bill_no, type, customer, mode, grand_total, date`

// ListBills returns every bill with its lines, ordered by id.
func (c conn) ListBills(ctx context.Context) ([]domain.Bill, error) {
	bills, err := c.listBillHeaders(ctx)
	if err != nil {
		return nil, err
	}
	lines, err := c.listAllLines(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[int64]int, len(bills))
	for i, bill := range bills {
		index[bill.ID] = i
	}
	for _, line := range lines {
		if i, ok := index[line.BillID]; ok {
			bills[i].Lines = append(bills[i].Lines, line)
		}
	}
	return bills, nil
}

func (c conn) listBillHeaders(ctx context.Context) ([]domain.Bill, error) {
	rows, err := c.query(ctx, `SELECT `+billColumns+` FROM bills ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	bills := make([]domain.Bill, 0)
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	return bills, nil
}

func (c conn) listAllLines(ctx context.Context) ([]domain.BillLine, error) {
	rows, err := c.query(ctx, `
		SELECT id, bill_id, name, qty, price, total, cost_price
		FROM bill_items
		ORDER BY bill_id ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list bill lines: %w", err)
	}
	defer rows.Close()
	return collectLines(rows)
}

func (c conn) GetBill(ctx context.Context, id int64) (domain.Bill, error) {
	row := c.queryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ?`, id)
	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Bill{}, ErrNotFound
	}
	if err != nil {
		return domain.Bill{}, fmt.Errorf("get bill %d: %w", id, err)
	}
	lines, err := c.billLines(ctx, id)
	if err != nil {
		return domain.Bill{}, err
	}
	bill.Lines = lines
	return bill, nil
}

func (c conn) billLines(ctx context.Context, billID int64) ([]domain.BillLine, error) {
	rows, err := c.query(ctx, `
		SELECT id, bill_id, name, qty, price, total, cost_price
		FROM bill_items
		WHERE bill_id = ?
		ORDER BY id ASC
	`, billID)
	if err != nil {
		return nil, fmt.Errorf("query bill lines %d: %w", billID, err)
	}
	defer rows.Close()
	return collectLines(rows)
}

// InsertBill stores the header and lines and returns the bill with store-assigned ids.
func (c conn) InsertBill(ctx context.Context, bill domain.Bill) (domain.Bill, error) {
	err := c.queryRow(ctx, `
		INSERT INTO bills (bill_no, type, customer, mode, grand_total, date)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, bill.SequenceNo, string(bill.Kind), bill.Counterparty, bill.Mode, bill.GrandTotal, bill.Date).Scan(&bill.ID)
	if isUniqueViolation(err) {
		return domain.Bill{}, fmt.Errorf("insert %s bill #%d: %w", bill.Kind, bill.SequenceNo, ErrConflict)
	}
	if err != nil {
		return domain.Bill{}, fmt.Errorf("insert bill: %w", err)
	}

	lines, err := c.insertLines(ctx, bill.ID, bill.Lines)
	if err != nil {
		return domain.Bill{}, err
	}
	bill.Lines = lines
	return bill, nil
}

// UpdateBill rewrites header fields other than the date and replaces all lines.
func (c conn) UpdateBill(ctx context.Context, bill domain.Bill) (domain.Bill, error) {
	res, err := c.exec(ctx, `
		UPDATE bills
		SET bill_no = ?, type = ?, customer = ?, mode = ?, grand_total = ?
		WHERE id = ?
	`, bill.SequenceNo, string(bill.Kind), bill.Counterparty, bill.Mode, bill.GrandTotal, bill.ID)
	if isUniqueViolation(err) {
		return domain.Bill{}, fmt.Errorf("update bill %d: %w", bill.ID, ErrConflict)
	}
	if err != nil {
		return domain.Bill{}, fmt.Errorf("update bill %d: %w", bill.ID, err)
	}
	if err := requireAffected(res, "update bill"); err != nil {
		return domain.Bill{}, err
	}

	if _, err := c.exec(ctx, `DELETE FROM bill_items WHERE bill_id = ?`, bill.ID); err != nil {
		return domain.Bill{}, fmt.Errorf("clear bill lines %d: %w", bill.ID, err)
	}
	lines, err := c.insertLines(ctx, bill.ID, bill.Lines)
	if err != nil {
		return domain.Bill{}, err
	}
	bill.Lines = lines
	return bill, nil
}

func (c conn) DeleteBill(ctx context.Context, id int64) error {
	if _, err := c.exec(ctx, `DELETE FROM bill_items WHERE bill_id = ?`, id); err != nil {
		return fmt.Errorf("delete bill lines %d: %w", id, err)
	}
	res, err := c.exec(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bill %d: %w", id, err)
	}
	return requireAffected(res, "delete bill")
}

func (c conn) insertLines(ctx context.Context, billID int64, lines []domain.BillLine) ([]domain.BillLine, error) {
	stored := make([]domain.BillLine, 0, len(lines))
	for _, line := range lines {
		line.BillID = billID
		if err := c.queryRow(ctx, `
			INSERT INTO bill_items (bill_id, name, qty, price, total, cost_price)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id
		`, billID, line.Name, line.Quantity, line.Price, line.Total, line.CostPrice).Scan(&line.ID); err != nil {
			return nil, fmt.Errorf("insert line for bill %d: %w", billID, err)
		}
		stored = append(stored, line)
	}
	return stored, nil
}

func collectLines(rows *sql.Rows) ([]domain.BillLine, error) {
	lines := make([]domain.BillLine, 0)
	for rows.Next() {
		var line domain.BillLine
		if err := rows.Scan(
			&line.ID,
			&line.BillID,
			&line.Name,
			&line.Quantity,
			&line.Price,
			&line.Total,
			&line.CostPrice,
		); err != nil {
			return nil, fmt.Errorf("scan bill line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bill lines: %w", err)
	}
	return lines, nil
}

func scanBill(row interface{ Scan(dest ...any) error }) (domain.Bill, error) {
	var (
		bill         domain.Bill
		kind         string
		counterparty sql.NullString
		mode         sql.NullString
	)
	if err := row.Scan(
		&bill.ID,
		&bill.SequenceNo,
		&kind,
		&counterparty,
		&mode,
		&bill.GrandTotal,
		&bill.Date,
	); err != nil {
		return domain.Bill{}, err
	}
	// Older databases allowed NULL customer and mode.
	bill.Kind = domain.BillKind(kind)
	bill.Counterparty = counterparty.String
	bill.Mode = mode.String
	return bill, nil
}
