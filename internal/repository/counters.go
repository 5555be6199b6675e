package repository

import (
	"context"
	"fmt"

	"billing/internal/domain"
)

// NextSequence advances and returns the durable counter for kind. Numbers are never handed
// out twice, even after the bill that used one is deleted.
func (c conn) NextSequence(ctx context.Context, kind domain.BillKind) (int, error) {
	var next int
	if err := c.queryRow(ctx, `
		INSERT INTO bill_counters (kind, last_no)
		VALUES (?, 1)
		ON CONFLICT (kind) DO UPDATE SET last_no = bill_counters.last_no + 1
		RETURNING last_no
	`, string(kind)).Scan(&next); err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", kind, err)
	}
	return next, nil
}

func (c conn) Counters(ctx context.Context) (map[domain.BillKind]int, error) {
	rows, err := c.query(ctx, `SELECT kind, last_no FROM bill_counters`)
	if err != nil {
		return nil, fmt.Errorf("list counters: %w", err)
	}
	defer rows.Close()

	counters := make(map[domain.BillKind]int)
	for rows.Next() {
		var (
			kind string
			last int
		)
		if err := rows.Scan(&kind, &last); err != nil {
			return nil, fmt.Errorf("scan counter: %w", err)
		}
		counters[domain.BillKind(kind)] = last
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counters: %w", err)
	}
	return counters, nil
}
