package service

import (
	"context"
	"strings"

	"billing/internal/domain"
	"billing/internal/repository"

	"github.com/shopspring/decimal"
)

// Summary gathers the dashboard figures: all-time sales and purchases, today's and
// month-to-date sales, and realized profit.
func (s *Service) Summary(ctx context.Context) (domain.BillingSummary, error) {
	today := s.now().Format(domain.DateLayout)
	monthStart := today[:8] + "01"

	sales, err := s.repo.KindTotal(ctx, domain.KindSale, repository.Period{})
	if err != nil {
		return domain.BillingSummary{}, err
	}
	purchases, err := s.repo.KindTotal(ctx, domain.KindPurchase, repository.Period{})
	if err != nil {
		return domain.BillingSummary{}, err
	}
	todaySales, err := s.repo.KindTotal(ctx, domain.KindSale, repository.Period{From: today, To: today})
	if err != nil {
		return domain.BillingSummary{}, err
	}
	monthSales, err := s.repo.KindTotal(ctx, domain.KindSale, repository.Period{From: monthStart, To: today})
	if err != nil {
		return domain.BillingSummary{}, err
	}
	profit, err := s.repo.TotalProfit(ctx, repository.Period{})
	if err != nil {
		return domain.BillingSummary{}, err
	}

	return domain.BillingSummary{
		TotalSales:     sales,
		TotalPurchases: purchases,
		Net:            sales.Sub(purchases),
		Today:          todaySales,
		MonthToDate:    monthSales,
		Profit:         profit,
	}, nil
}

func (s *Service) Profit(ctx context.Context, period repository.Period) (decimal.Decimal, error) {
	return s.repo.TotalProfit(ctx, period)
}

func (s *Service) SalesTotal(ctx context.Context, period repository.Period) (decimal.Decimal, error) {
	return s.repo.KindTotal(ctx, domain.KindSale, period)
}

func (s *Service) SalesReport(ctx context.Context, period repository.Period) ([]domain.ItemSales, error) {
	return s.repo.SalesByItem(ctx, period)
}

func (s *Service) Customers(ctx context.Context, period repository.Period) ([]domain.CustomerTotal, error) {
	return s.repo.CustomerTotals(ctx, period)
}

func (s *Service) Monthly(ctx context.Context, limit int) ([]domain.MonthlySummary, error) {
	return s.repo.MonthlySummary(ctx, limit)
}

func (s *Service) PartyLedger(name string) (domain.PartyLedger, error) {
	if strings.TrimSpace(name) == "" {
		return domain.PartyLedger{}, &domain.ValidationError{Field: "name", Message: "is required"}
	}
	return s.mirror.PartyLedger(name), nil
}
