package ledger

import (
	"context"
	"fmt"
	"strings"

	"billing/internal/domain"

	"github.com/shopspring/decimal"
)

type ProductInput struct {
	Name         string          `json:"name"`
	Stock        int             `json:"stock"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	Category     *string         `json:"category"`
	ReorderLevel *int            `json:"reorder_level"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &domain.ValidationError{Field: "name", Message: "is required"}
	}
	if in.CostPrice.IsNegative() || in.SalePrice.IsNegative() {
		return &domain.ValidationError{Field: "price", Message: "cannot be negative"}
	}
	if in.ReorderLevel != nil && *in.ReorderLevel < 0 {
		return &domain.ValidationError{Field: "reorder_level", Message: "cannot be negative"}
	}
	return nil
}

func normalizeCategory(category *string) *string {
	if category == nil {
		return nil
	}
	value := strings.TrimSpace(*category)
	if value == "" {
		return nil
	}
	return &value
}

// EnsureItem returns the item for name, provisioning it when unknown.
func (e *Engine) EnsureItem(ctx context.Context, name string) (domain.InventoryItem, bool, error) {
	if strings.TrimSpace(name) == "" {
		return domain.InventoryItem{}, false, &domain.ValidationError{Field: "name", Message: "is required"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return domain.InventoryItem{}, false, fmt.Errorf("ensure item: %w", err)
	}
	defer tx.Rollback()

	item, created, err := tx.GetOrCreateItem(ctx, name)
	if err != nil {
		return domain.InventoryItem{}, false, fmt.Errorf("ensure item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.InventoryItem{}, false, fmt.Errorf("ensure item: %w", err)
	}
	e.mirror.PutItems(item)
	if created {
		e.log.Info().Str("item", item.Name).Msg("item provisioned")
	}
	return item, created, nil
}

// AdjustStock adds delta to the item's stock, provisioning the item if needed. Stock has no
// lower bound.
func (e *Engine) AdjustStock(ctx context.Context, name string, delta int) (domain.InventoryItem, error) {
	if strings.TrimSpace(name) == "" {
		return domain.InventoryItem{}, &domain.ValidationError{Field: "name", Message: "is required"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("adjust stock: %w", err)
	}
	defer tx.Rollback()

	if _, _, err := tx.GetOrCreateItem(ctx, name); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("adjust stock: %w", err)
	}
	if err := tx.AddStock(ctx, name, delta); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("adjust stock: %w", err)
	}
	item, err := tx.GetItem(ctx, name)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("adjust stock: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("adjust stock: %w", err)
	}
	e.mirror.PutItems(item)
	return item, nil
}

// AddProduct creates an item explicitly. An item with the same key is a conflict.
func (e *Engine) AddProduct(ctx context.Context, in ProductInput) (domain.InventoryItem, error) {
	if err := in.validate(); err != nil {
		return domain.InventoryItem{}, err
	}
	item := domain.InventoryItem{
		Key:          domain.NormalizeKey(in.Name),
		Name:         strings.TrimSpace(in.Name),
		Stock:        in.Stock,
		CostPrice:    in.CostPrice,
		SalePrice:    in.SalePrice,
		Category:     normalizeCategory(in.Category),
		ReorderLevel: domain.DefaultReorderLevel,
	}
	if in.ReorderLevel != nil {
		item.ReorderLevel = *in.ReorderLevel
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("add product: %w", err)
	}
	defer tx.Rollback()

	if err := tx.InsertItem(ctx, item); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("add product: %w", err)
	}
	if item, err = tx.GetItem(ctx, item.Key); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("add product: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("add product: %w", err)
	}
	e.mirror.PutItems(item)
	return item, nil
}

// EditProduct updates name, prices, category and reorder level of the item called current.
// Renaming onto another item's key is a conflict. Stock is preserved and historical bill
// lines keep the name they were written with.
func (e *Engine) EditProduct(ctx context.Context, current string, in ProductInput) (domain.InventoryItem, error) {
	if err := in.validate(); err != nil {
		return domain.InventoryItem{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("edit product: %w", err)
	}
	defer tx.Rollback()

	existing, err := tx.GetItem(ctx, current)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("edit product %q: %w", current, err)
	}
	updated := existing
	updated.Key = domain.NormalizeKey(in.Name)
	updated.Name = strings.TrimSpace(in.Name)
	updated.CostPrice = in.CostPrice
	updated.SalePrice = in.SalePrice
	updated.Category = normalizeCategory(in.Category)
	if in.ReorderLevel != nil {
		updated.ReorderLevel = *in.ReorderLevel
	}

	if err := tx.UpdateItem(ctx, existing.Key, updated); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("edit product %q: %w", current, err)
	}
	if updated, err = tx.GetItem(ctx, updated.Key); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("edit product %q: %w", current, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("edit product: %w", err)
	}
	e.mirror.RemoveItem(existing.Key)
	e.mirror.PutItems(updated)
	return updated, nil
}

// SetStock overwrites an existing item's stock.
func (e *Engine) SetStock(ctx context.Context, name string, stock int) (domain.InventoryItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("set stock: %w", err)
	}
	defer tx.Rollback()

	if err := tx.SetStock(ctx, name, stock); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("set stock %q: %w", name, err)
	}
	item, err := tx.GetItem(ctx, name)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("set stock %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("set stock: %w", err)
	}
	e.mirror.PutItems(item)
	return item, nil
}

// DeleteProduct removes the item and reports whether any bill line still names it. Bills
// are never rewritten.
func (e *Engine) DeleteProduct(ctx context.Context, name string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	defer tx.Rollback()

	refs, err := tx.CountItemReferences(ctx, name)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	if err := tx.DeleteItem(ctx, name); err != nil {
		return false, fmt.Errorf("delete product %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	e.mirror.RemoveItem(name)
	if refs > 0 {
		e.log.Warn().Str("item", name).Int("bill_lines", refs).Msg("deleted item still named by bills")
	}
	return refs > 0, nil
}

// ImportItems upserts spreadsheet rows in one transaction.
func (e *Engine) ImportItems(ctx context.Context, rows []domain.InventoryImportRow) (int, int, error) {
	if len(rows) == 0 {
		return 0, 0, &domain.ValidationError{Field: "rows", Message: "import has no data rows"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("import items: %w", err)
	}
	defer tx.Rollback()

	created, updated := 0, 0
	keys := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		wasCreated, err := tx.UpsertItem(ctx, row)
		if err != nil {
			return 0, 0, fmt.Errorf("import item %q: %w", row.Name, err)
		}
		if wasCreated {
			created++
		} else {
			updated++
		}
		key := domain.NormalizeKey(row.Name)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	items, err := loadItems(ctx, tx, keys)
	if err != nil {
		return 0, 0, fmt.Errorf("import items: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("import items: %w", err)
	}
	e.mirror.PutItems(items...)
	e.log.Info().Int("created", created).Int("updated", updated).Msg("inventory imported")
	return created, updated, nil
}

func (e *Engine) SaveProfile(ctx context.Context, profile domain.BusinessProfile) error {
	profile = domain.BusinessProfile{
		Name:    strings.TrimSpace(profile.Name),
		Address: strings.TrimSpace(profile.Address),
		Phone:   strings.TrimSpace(profile.Phone),
		TaxID:   strings.TrimSpace(profile.TaxID),
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	defer tx.Rollback()

	if err := tx.SaveProfile(ctx, profile); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	e.mirror.SetProfile(profile)
	return nil
}
