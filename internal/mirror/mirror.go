// Package mirror keeps an in-memory copy of inventory, bills, sequence counters and the
// business profile. It is loaded from the store once and then updated by the ledger engine
// after each committed mutation; readers never touch the database.
package mirror

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"billing/internal/domain"

	"github.com/shopspring/decimal"
)

type Source interface {
	ListItems(ctx context.Context) ([]domain.InventoryItem, error)
	ListBills(ctx context.Context) ([]domain.Bill, error)
	Counters(ctx context.Context) (map[domain.BillKind]int, error)
	LoadProfile(ctx context.Context) (domain.BusinessProfile, error)
}

type Mirror struct {
	mu       sync.RWMutex
	items    map[string]domain.InventoryItem
	bills    map[int64]domain.Bill
	counters map[domain.BillKind]int
	profile  domain.BusinessProfile
}

func New() *Mirror {
	return &Mirror{
		items:    make(map[string]domain.InventoryItem),
		bills:    make(map[int64]domain.Bill),
		counters: make(map[domain.BillKind]int),
	}
}

// Reload replaces the whole mirror with the store's contents. On error the previous
// contents are kept.
func (m *Mirror) Reload(ctx context.Context, src Source) error {
	items, err := src.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("reload inventory: %w", err)
	}
	bills, err := src.ListBills(ctx)
	if err != nil {
		return fmt.Errorf("reload bills: %w", err)
	}
	counters, err := src.Counters(ctx)
	if err != nil {
		return fmt.Errorf("reload counters: %w", err)
	}
	profile, err := src.LoadProfile(ctx)
	if err != nil {
		return fmt.Errorf("reload profile: %w", err)
	}

	nextItems := make(map[string]domain.InventoryItem, len(items))
	for _, item := range items {
		nextItems[item.Key] = item
	}
	nextBills := make(map[int64]domain.Bill, len(bills))
	nextCounters := make(map[domain.BillKind]int, len(counters))
	for kind, last := range counters {
		nextCounters[kind] = last
	}
	for _, bill := range bills {
		nextBills[bill.ID] = bill.Clone()
		if bill.SequenceNo > nextCounters[bill.Kind] {
			nextCounters[bill.Kind] = bill.SequenceNo
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nextItems
	m.bills = nextBills
	m.counters = nextCounters
	m.profile = profile
	return nil
}

func (m *Mirror) Item(name string) (domain.InventoryItem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[domain.NormalizeKey(name)]
	return item, ok
}

// Stock is the current stock for name; unknown items have none.
func (m *Mirror) Stock(name string) int {
	item, _ := m.Item(name)
	return item.Stock
}

// Items returns all items ordered by key.
func (m *Mirror) Items() []domain.InventoryItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]domain.InventoryItem, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	return items
}

func (m *Mirror) LowStock() []domain.InventoryItem {
	all := m.Items()
	low := make([]domain.InventoryItem, 0)
	for _, item := range all {
		if item.IsLow() {
			low = append(low, item)
		}
	}
	return low
}

func (m *Mirror) InventorySummary() domain.InventorySummary {
	summary := domain.InventorySummary{Value: decimal.Zero}
	for _, item := range m.Items() {
		summary.TotalItems++
		summary.TotalStock += item.Stock
		summary.Value = summary.Value.Add(item.Value())
		if item.IsLow() {
			summary.LowStock++
		}
	}
	return summary
}

func (m *Mirror) Bill(id int64) (domain.Bill, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bill, ok := m.bills[id]
	if !ok {
		return domain.Bill{}, false
	}
	return bill.Clone(), true
}

type BillFilter struct {
	Kind domain.BillKind
	// Text matches the sequence number, the counterparty or the items summary, case-insensitively.
	Text string
	From string
	To   string
}

func (f BillFilter) matches(bill domain.Bill) bool {
	if f.Kind != "" && bill.Kind != f.Kind {
		return false
	}
	if f.From != "" && bill.Date < f.From {
		return false
	}
	if f.To != "" && bill.Date > f.To {
		return false
	}
	text := strings.ToLower(strings.TrimSpace(f.Text))
	if text == "" {
		return true
	}
	return strings.Contains(strconv.Itoa(bill.SequenceNo), text) ||
		strings.Contains(strings.ToLower(bill.Counterparty), text) ||
		strings.Contains(strings.ToLower(bill.ItemsSummary()), text)
}

// Bills returns matching bills, newest first.
func (m *Mirror) Bills(filter BillFilter) []domain.Bill {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bills := make([]domain.Bill, 0, len(m.bills))
	for _, bill := range m.bills {
		if filter.matches(bill) {
			bills = append(bills, bill.Clone())
		}
	}
	sort.Slice(bills, func(i, j int) bool { return bills[i].ID > bills[j].ID })
	return bills
}

// Counter is the highest sequence number issued for kind.
func (m *Mirror) Counter(kind domain.BillKind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[kind]
}

func (m *Mirror) Profile() domain.BusinessProfile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profile
}

// PartyLedger totals sales and purchases for one counterparty name, case-insensitively.
func (m *Mirror) PartyLedger(name string) domain.PartyLedger {
	ledger := domain.PartyLedger{
		Name:      strings.TrimSpace(name),
		Sales:     decimal.Zero,
		Purchases: decimal.Zero,
	}
	key := domain.NormalizeKey(name)
	m.mu.RLock()
	for _, bill := range m.bills {
		if domain.NormalizeKey(bill.Counterparty) != key {
			continue
		}
		ledger.Bills++
		if bill.Kind == domain.KindSale {
			ledger.Sales = ledger.Sales.Add(bill.GrandTotal)
		} else {
			ledger.Purchases = ledger.Purchases.Add(bill.GrandTotal)
		}
	}
	m.mu.RUnlock()
	ledger.Balance = ledger.Sales.Sub(ledger.Purchases)
	return ledger
}

func (m *Mirror) PutItems(items ...domain.InventoryItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		m.items[item.Key] = item
	}
}

func (m *Mirror) RemoveItem(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, domain.NormalizeKey(name))
}

// PutBill stores bill and raises its kind's counter if needed.
func (m *Mirror) PutBill(bill domain.Bill) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bills[bill.ID] = bill.Clone()
	if bill.SequenceNo > m.counters[bill.Kind] {
		m.counters[bill.Kind] = bill.SequenceNo
	}
}

func (m *Mirror) RemoveBill(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bills, id)
}

func (m *Mirror) SetProfile(profile domain.BusinessProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = profile
}
