package ledger

import (
	"context"
	"fmt"
	"sort"

	"billing/internal/domain"
	"billing/internal/repository"
)

type aggregateLine struct {
	Name string
	Qty  int
}

func aggregateLines(lines []domain.BillLine) map[string]*aggregateLine {
	result := make(map[string]*aggregateLine)
	for _, line := range lines {
		key := domain.NormalizeKey(line.Name)
		if key == "" {
			continue
		}
		entry, ok := result[key]
		if !ok {
			entry = &aggregateLine{Name: line.Name}
			result[key] = entry
		}
		entry.Qty += line.Quantity
	}
	return result
}

func aggregateInputs(lines []domain.LineInput) map[string]*aggregateLine {
	result := make(map[string]*aggregateLine)
	for _, line := range lines {
		key := domain.NormalizeKey(line.Name)
		entry, ok := result[key]
		if !ok {
			entry = &aggregateLine{Name: line.Name}
			result[key] = entry
		}
		entry.Qty += line.Quantity
	}
	return result
}

func collectKeys(a, b map[string]*aggregateLine) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for key := range a {
		set[key] = struct{}{}
	}
	for key := range b {
		set[key] = struct{}{}
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// CheckStock reports, for a sale draft, every item whose total requested quantity exceeds
// current stock. When editing is a bill id, that bill's own sale quantities count as
// available. Shortages are warnings; nothing is blocked. The check waits for any mutation in
// flight, so it never sees a half-applied bill.
func (e *Engine) CheckStock(draft domain.BillDraft, editing int64) []domain.StockShortage {
	e.mu.Lock()
	defer e.mu.Unlock()

	var original *domain.Bill
	if editing != 0 {
		if bill, ok := e.mirror.Bill(editing); ok {
			original = &bill
		}
	}
	return e.checkStock(draft.Normalize(), original)
}

func (e *Engine) checkStock(draft domain.BillDraft, original *domain.Bill) []domain.StockShortage {
	if draft.Kind != domain.KindSale {
		return nil
	}
	requested := aggregateInputs(draft.Lines)
	credit := map[string]*aggregateLine{}
	if original != nil && original.Kind == domain.KindSale {
		credit = aggregateLines(original.Lines)
	}

	keys := collectKeys(requested, nil)
	shortages := make([]domain.StockShortage, 0)
	for _, key := range keys {
		entry := requested[key]
		if entry.Qty <= 0 {
			continue
		}
		available := e.mirror.Stock(key)
		if c := credit[key]; c != nil {
			available += c.Qty
		}
		if entry.Qty > available {
			shortages = append(shortages, domain.StockShortage{
				Name:      entry.Name,
				Requested: entry.Qty,
				Available: available,
			})
		}
	}
	return shortages
}

// snapshotLines provisions every referenced item and captures its current cost price.
func snapshotLines(ctx context.Context, tx *repository.Tx, inputs []domain.LineInput) ([]domain.BillLine, []string, error) {
	lines := make([]domain.BillLine, 0, len(inputs))
	provisioned := make([]string, 0)
	for _, input := range inputs {
		item, created, err := tx.GetOrCreateItem(ctx, input.Name)
		if err != nil {
			return nil, nil, err
		}
		if created {
			provisioned = append(provisioned, item.Name)
		}
		lines = append(lines, domain.BillLine{
			Name:      input.Name,
			Quantity:  input.Quantity,
			Price:     input.Price,
			Total:     input.Total(),
			CostPrice: item.CostPrice,
		})
	}
	return lines, provisioned, nil
}

// applyStockChange reverses the stock effect of removed and applies that of added, netted
// per item key. Either bill may be nil. It returns the keys it touched and any items it had
// to provision.
func applyStockChange(ctx context.Context, tx *repository.Tx, removed, added *domain.Bill) ([]string, []string, error) {
	oldMap := map[string]*aggregateLine{}
	oldSign := 0
	if removed != nil {
		oldMap = aggregateLines(removed.Lines)
		oldSign = removed.Kind.StockSign()
	}
	newMap := map[string]*aggregateLine{}
	newSign := 0
	if added != nil {
		newMap = aggregateLines(added.Lines)
		newSign = added.Kind.StockSign()
	}

	keys := collectKeys(oldMap, newMap)
	provisioned := make([]string, 0)
	for _, key := range keys {
		delta := 0
		name := ""
		if oldEntry := oldMap[key]; oldEntry != nil {
			delta -= oldSign * oldEntry.Qty
			name = oldEntry.Name
		}
		if newEntry := newMap[key]; newEntry != nil {
			delta += newSign * newEntry.Qty
			name = newEntry.Name
		}

		item, created, err := tx.GetOrCreateItem(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		if created {
			provisioned = append(provisioned, item.Name)
		}
		if delta == 0 {
			continue
		}
		if err := tx.AddStock(ctx, key, delta); err != nil {
			return nil, nil, fmt.Errorf("apply stock change to %q: %w", name, err)
		}
	}
	return keys, provisioned, nil
}

func loadItems(ctx context.Context, tx *repository.Tx, keys []string) ([]domain.InventoryItem, error) {
	items := make([]domain.InventoryItem, 0, len(keys))
	for _, key := range keys {
		item, err := tx.GetItem(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("reload item %q: %w", key, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func mergeNames(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, list := range lists {
		for _, name := range list {
			key := domain.NormalizeKey(name)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
