package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"billing/internal/domain"

	"github.com/shopspring/decimal"
)

const itemColumns = `name_key, name, stock, cost_price, sale_price, category, reorder_level`

func (c conn) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	rows, err := c.query(ctx, `SELECT `+itemColumns+` FROM inventory ORDER BY name_key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return items, nil
}

func (c conn) GetItem(ctx context.Context, name string) (domain.InventoryItem, error) {
	key := domain.NormalizeKey(name)
	row := c.queryRow(ctx, `SELECT `+itemColumns+` FROM inventory WHERE name_key = ?`, key)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InventoryItem{}, ErrNotFound
	}
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("get item %q: %w", key, err)
	}
	return item, nil
}

// GetOrCreateItem returns the item for name, provisioning it with zero stock and prices
// when the key is unknown.
func (c conn) GetOrCreateItem(ctx context.Context, name string) (domain.InventoryItem, bool, error) {
	item, err := c.GetItem(ctx, name)
	if err == nil {
		return item, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.InventoryItem{}, false, err
	}

	item = domain.InventoryItem{
		Key:          domain.NormalizeKey(name),
		Name:         strings.TrimSpace(name),
		CostPrice:    decimal.Zero,
		SalePrice:    decimal.Zero,
		ReorderLevel: domain.DefaultReorderLevel,
	}
	if err := c.InsertItem(ctx, item); err != nil {
		return domain.InventoryItem{}, false, err
	}
	return item, true, nil
}

func (c conn) InsertItem(ctx context.Context, item domain.InventoryItem) error {
	_, err := c.exec(ctx, `
		INSERT INTO inventory (name_key, name, stock, cost_price, sale_price, category, reorder_level)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, item.Key, item.Name, item.Stock, item.CostPrice, item.SalePrice, item.Category, item.ReorderLevel)
	if isUniqueViolation(err) {
		return fmt.Errorf("insert item %q: %w", item.Name, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert item %q: %w", item.Name, err)
	}
	return nil
}

// UpdateItem rewrites the row stored under oldKey, including its key. Stock is left as is.
func (c conn) UpdateItem(ctx context.Context, oldKey string, item domain.InventoryItem) error {
	res, err := c.exec(ctx, `
		UPDATE inventory
		SET name_key = ?, name = ?, cost_price = ?, sale_price = ?, category = ?, reorder_level = ?
		WHERE name_key = ?
	`, item.Key, item.Name, item.CostPrice, item.SalePrice, item.Category, item.ReorderLevel, oldKey)
	if isUniqueViolation(err) {
		return fmt.Errorf("update item %q: %w", item.Name, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update item %q: %w", oldKey, err)
	}
	return requireAffected(res, "update item")
}

func (c conn) AddStock(ctx context.Context, name string, delta int) error {
	res, err := c.exec(ctx, `UPDATE inventory SET stock = stock + ? WHERE name_key = ?`, delta, domain.NormalizeKey(name))
	if err != nil {
		return fmt.Errorf("adjust stock %q: %w", name, err)
	}
	return requireAffected(res, "adjust stock")
}

func (c conn) SetStock(ctx context.Context, name string, stock int) error {
	res, err := c.exec(ctx, `UPDATE inventory SET stock = ? WHERE name_key = ?`, stock, domain.NormalizeKey(name))
	if err != nil {
		return fmt.Errorf("set stock %q: %w", name, err)
	}
	return requireAffected(res, "set stock")
}

func (c conn) DeleteItem(ctx context.Context, name string) error {
	res, err := c.exec(ctx, `DELETE FROM inventory WHERE name_key = ?`, domain.NormalizeKey(name))
	if err != nil {
		return fmt.Errorf("delete item %q: %w", name, err)
	}
	return requireAffected(res, "delete item")
}

// CountItemReferences counts bill lines whose name maps to the same key.
func (c conn) CountItemReferences(ctx context.Context, name string) (int, error) {
	var count int
	if err := c.queryRow(ctx,
		`SELECT COUNT(*) FROM bill_items WHERE LOWER(TRIM(name)) = ?`,
		domain.NormalizeKey(name),
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count references to %q: %w", name, err)
	}
	return count, nil
}

// UpsertItem writes an imported row, replacing stock and prices of an existing item.
func (c conn) UpsertItem(ctx context.Context, row domain.InventoryImportRow) (bool, error) {
	existing, err := c.GetItem(ctx, row.Name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	created := errors.Is(err, ErrNotFound)

	item := domain.InventoryItem{
		Key:          domain.NormalizeKey(row.Name),
		Name:         strings.TrimSpace(row.Name),
		Stock:        row.Stock,
		CostPrice:    row.CostPrice,
		SalePrice:    row.SalePrice,
		Category:     row.Category,
		ReorderLevel: domain.DefaultReorderLevel,
	}
	if !created {
		item.ReorderLevel = existing.ReorderLevel
		if item.Category == nil {
			item.Category = existing.Category
		}
	}
	if row.ReorderLevel != nil {
		item.ReorderLevel = *row.ReorderLevel
	}

	if created {
		return true, c.InsertItem(ctx, item)
	}
	if err := c.UpdateItem(ctx, item.Key, item); err != nil {
		return false, err
	}
	return false, c.SetStock(ctx, item.Key, item.Stock)
}

func scanItem(row interface{ Scan(dest ...any) error }) (domain.InventoryItem, error) {
	var (
		item     domain.InventoryItem
		category sql.NullString
	)
	if err := row.Scan(
		&item.Key,
		&item.Name,
		&item.Stock,
		&item.CostPrice,
		&item.SalePrice,
		&category,
		&item.ReorderLevel,
	); err != nil {
		return domain.InventoryItem{}, err
	}
	if category.Valid {
		value := category.String
		item.Category = &value
	}
	return item, nil
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
