package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"billing/internal/domain"
	"billing/internal/ledger"
	"billing/internal/mirror"
	"billing/internal/repository"
)

var ErrNothingToExport = errors.New("nothing to export")

type Service struct {
	engine   *ledger.Engine
	repo     *repository.Repository
	mirror   *mirror.Mirror
	currency string
	now      func() time.Time
}

func New(engine *ledger.Engine, repo *repository.Repository, currency string) *Service {
	if strings.TrimSpace(currency) == "" {
		currency = "Rs."
	}
	return &Service{
		engine:   engine,
		repo:     repo,
		mirror:   engine.Mirror(),
		currency: currency,
		now:      time.Now,
	}
}

func (s *Service) Currency() string {
	return s.currency
}

func (s *Service) CreateBill(ctx context.Context, draft domain.BillDraft) (ledger.BillResult, error) {
	return s.engine.CreateBill(ctx, draft)
}

func (s *Service) CheckStock(draft domain.BillDraft, editing int64) []domain.StockShortage {
	return s.engine.CheckStock(draft, editing)
}

func (s *Service) EditBill(ctx context.Context, id int64, draft domain.BillDraft) (ledger.BillResult, error) {
	return s.engine.EditBill(ctx, id, draft)
}

func (s *Service) DeleteBill(ctx context.Context, id int64) error {
	return s.engine.DeleteBill(ctx, id)
}

func (s *Service) ListBills(filter mirror.BillFilter) ([]domain.Bill, error) {
	filter.Text = strings.TrimSpace(filter.Text)
	if _, err := ParsePeriod(filter.From, filter.To); err != nil {
		return nil, err
	}
	return s.mirror.Bills(filter), nil
}

func (s *Service) GetBill(id int64) (domain.Bill, error) {
	bill, ok := s.mirror.Bill(id)
	if !ok {
		return domain.Bill{}, fmt.Errorf("bill %d: %w", id, ledger.ErrNotFound)
	}
	return bill, nil
}

func (s *Service) Counter(kind domain.BillKind) int {
	return s.engine.Counter(kind)
}

func (s *Service) Items() []domain.InventoryItem {
	return s.mirror.Items()
}

func (s *Service) GetItem(name string) (domain.InventoryItem, error) {
	item, ok := s.mirror.Item(name)
	if !ok {
		return domain.InventoryItem{}, fmt.Errorf("item %q: %w", strings.TrimSpace(name), ledger.ErrNotFound)
	}
	return item, nil
}

func (s *Service) LowStock() []domain.InventoryItem {
	return s.mirror.LowStock()
}

func (s *Service) InventorySummary() domain.InventorySummary {
	return s.mirror.InventorySummary()
}

func (s *Service) AddProduct(ctx context.Context, in ledger.ProductInput) (domain.InventoryItem, error) {
	return s.engine.AddProduct(ctx, in)
}

func (s *Service) EditProduct(ctx context.Context, current string, in ledger.ProductInput) (domain.InventoryItem, error) {
	return s.engine.EditProduct(ctx, current, in)
}

func (s *Service) SetStock(ctx context.Context, name string, stock int) (domain.InventoryItem, error) {
	return s.engine.SetStock(ctx, name, stock)
}

func (s *Service) AdjustStock(ctx context.Context, name string, delta int) (domain.InventoryItem, error) {
	return s.engine.AdjustStock(ctx, name, delta)
}

func (s *Service) DeleteProduct(ctx context.Context, name string) (bool, error) {
	return s.engine.DeleteProduct(ctx, name)
}

func (s *Service) Profile() domain.BusinessProfile {
	return s.mirror.Profile()
}

func (s *Service) SaveProfile(ctx context.Context, profile domain.BusinessProfile) (domain.BusinessProfile, error) {
	if err := s.engine.SaveProfile(ctx, profile); err != nil {
		return domain.BusinessProfile{}, err
	}
	return s.mirror.Profile(), nil
}

// ParsePeriod validates optional YYYY-MM-DD bounds.
func ParsePeriod(from, to string) (repository.Period, error) {
	period := repository.Period{From: strings.TrimSpace(from), To: strings.TrimSpace(to)}
	for field, value := range map[string]string{"from": period.From, "to": period.To} {
		if value == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, value); err != nil {
			return repository.Period{}, &domain.ValidationError{Field: field, Message: "must be a YYYY-MM-DD date"}
		}
	}
	if period.From != "" && period.To != "" && period.From > period.To {
		return repository.Period{}, &domain.ValidationError{Field: "from", Message: "must not be after to"}
	}
	return period, nil
}
