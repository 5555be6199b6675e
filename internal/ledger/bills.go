package ledger

import (
	"context"
	"fmt"

	"billing/internal/domain"
)

type BillResult struct {
	Bill        domain.Bill            `json:"bill"`
	Warnings    []domain.StockShortage `json:"warnings,omitempty"`
	Provisioned []string               `json:"provisioned,omitempty"`
}

// CreateBill issues the next sequence number for the draft's kind, records the bill with a
// cost snapshot per line and moves stock by the line quantities.
func (e *Engine) CreateBill(ctx context.Context, draft domain.BillDraft) (BillResult, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return BillResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	warnings := e.checkStock(draft, nil)

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return BillResult{}, fmt.Errorf("create bill: %w", err)
	}
	defer tx.Rollback()

	seq, err := tx.NextSequence(ctx, draft.Kind)
	if err != nil {
		return BillResult{}, fmt.Errorf("create bill: %w", err)
	}
	lines, provisioned, err := snapshotLines(ctx, tx, draft.Lines)
	if err != nil {
		return BillResult{}, fmt.Errorf("create bill: %w", err)
	}
	bill, err := tx.InsertBill(ctx, domain.Bill{
		SequenceNo:   seq,
		Kind:         draft.Kind,
		Counterparty: draft.Counterparty,
		Mode:         draft.Mode,
		GrandTotal:   draft.GrandTotal(),
		Date:         e.today(),
		Lines:        lines,
	})
	if err != nil {
		return BillResult{}, fmt.Errorf("create bill: %w", err)
	}
	touched, _, err := applyStockChange(ctx, tx, nil, &bill)
	if err != nil {
		return BillResult{}, fmt.Errorf("create bill: %w", err)
	}
	// The store may round money values; the mirror holds what a reload would see.
	if bill, err = tx.GetBill(ctx, bill.ID); err != nil {
		return BillResult{}, fmt.Errorf("create bill: %w", err)
	}
	items, err := loadItems(ctx, tx, touched)
	if err != nil {
		return BillResult{}, fmt.Errorf("create bill: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return BillResult{}, fmt.Errorf("create bill: %w", err)
	}

	e.mirror.PutItems(items...)
	e.mirror.PutBill(bill)

	e.log.Info().
		Int64("bill_id", bill.ID).
		Str("kind", string(bill.Kind)).
		Int("bill_no", bill.SequenceNo).
		Str("grand_total", bill.GrandTotal.String()).
		Msg("bill created")
	e.logShortages(bill, warnings)

	return BillResult{Bill: bill.Clone(), Warnings: warnings, Provisioned: provisioned}, nil
}

// EditBill replaces the bill's header and lines. The stock effect of the stored bill is
// reversed and the new one applied in the same transaction. The sequence number is kept when
// the kind is unchanged; otherwise the destination kind's counter issues a fresh one. The
// original date is kept and cost prices are captured again at current cost.
func (e *Engine) EditBill(ctx context.Context, id int64, draft domain.BillDraft) (BillResult, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return BillResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	original, ok := e.mirror.Bill(id)
	if !ok {
		return BillResult{}, fmt.Errorf("edit bill %d: %w", id, ErrNotFound)
	}
	warnings := e.checkStock(draft, &original)

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return BillResult{}, fmt.Errorf("edit bill %d: %w", id, err)
	}
	defer tx.Rollback()

	stored, err := tx.GetBill(ctx, id)
	if err != nil {
		return BillResult{}, fmt.Errorf("edit bill %d: %w", id, err)
	}
	seq := stored.SequenceNo
	if draft.Kind != stored.Kind {
		seq, err = tx.NextSequence(ctx, draft.Kind)
		if err != nil {
			return BillResult{}, fmt.Errorf("edit bill %d: %w", id, err)
		}
	}
	lines, provisioned, err := snapshotLines(ctx, tx, draft.Lines)
	if err != nil {
		return BillResult{}, fmt.Errorf("edit bill %d: %w", id, err)
	}
	updated, err := tx.UpdateBill(ctx, domain.Bill{
		ID:           id,
		SequenceNo:   seq,
		Kind:         draft.Kind,
		Counterparty: draft.Counterparty,
		Mode:         draft.Mode,
		GrandTotal:   draft.GrandTotal(),
		Date:         stored.Date,
		Lines:        lines,
	})
	if err != nil {
		return BillResult{}, fmt.Errorf("edit bill %d: %w", id, err)
	}
	touched, restored, err := applyStockChange(ctx, tx, &stored, &updated)
	if err != nil {
		return BillResult{}, fmt.Errorf("edit bill %d: %w", id, err)
	}
	if updated, err = tx.GetBill(ctx, id); err != nil {
		return BillResult{}, fmt.Errorf("edit bill %d: %w", id, err)
	}
	items, err := loadItems(ctx, tx, touched)
	if err != nil {
		return BillResult{}, fmt.Errorf("edit bill %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return BillResult{}, fmt.Errorf("edit bill %d: %w", id, err)
	}

	e.mirror.PutItems(items...)
	e.mirror.PutBill(updated)

	e.log.Info().
		Int64("bill_id", id).
		Str("kind", string(updated.Kind)).
		Int("bill_no", updated.SequenceNo).
		Int("previous_bill_no", stored.SequenceNo).
		Str("grand_total", updated.GrandTotal.String()).
		Msg("bill edited")
	e.logShortages(updated, warnings)

	return BillResult{Bill: updated.Clone(), Warnings: warnings, Provisioned: mergeNames(provisioned, restored)}, nil
}

// DeleteBill reverses the bill's stock effect and removes it. Its sequence number is
// never reissued.
func (e *Engine) DeleteBill(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.mirror.Bill(id); !ok {
		return fmt.Errorf("delete bill %d: %w", id, ErrNotFound)
	}

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("delete bill %d: %w", id, err)
	}
	defer tx.Rollback()

	stored, err := tx.GetBill(ctx, id)
	if err != nil {
		return fmt.Errorf("delete bill %d: %w", id, err)
	}
	touched, _, err := applyStockChange(ctx, tx, &stored, nil)
	if err != nil {
		return fmt.Errorf("delete bill %d: %w", id, err)
	}
	if err := tx.DeleteBill(ctx, id); err != nil {
		return fmt.Errorf("delete bill %d: %w", id, err)
	}
	items, err := loadItems(ctx, tx, touched)
	if err != nil {
		return fmt.Errorf("delete bill %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete bill %d: %w", id, err)
	}

	e.mirror.PutItems(items...)
	e.mirror.RemoveBill(id)

	e.log.Info().
		Int64("bill_id", id).
		Str("kind", string(stored.Kind)).
		Int("bill_no", stored.SequenceNo).
		Msg("bill deleted")
	return nil
}

func (e *Engine) logShortages(bill domain.Bill, shortages []domain.StockShortage) {
	for _, s := range shortages {
		e.log.Warn().
			Int64("bill_id", bill.ID).
			Str("item", s.Name).
			Int("requested", s.Requested).
			Int("available", s.Available).
			Msg("sold beyond available stock")
	}
}
