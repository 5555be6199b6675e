package service

import (
	"context"
	"fmt"
	"io"

	"billing/internal/domain"
	"billing/internal/excel"
	"billing/internal/mirror"
	"billing/internal/pdf"
	"billing/internal/repository"
)

type ImportResult struct {
	Rows    int `json:"total_rows"`
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// ImportInventory parses an inventory workbook and upserts every row.
func (s *Service) ImportInventory(ctx context.Context, r io.Reader) (ImportResult, error) {
	rows, err := excel.ParseInventoryRows(r)
	if err != nil {
		return ImportResult{}, &domain.ValidationError{Field: "file", Message: err.Error()}
	}
	created, updated, err := s.engine.ImportItems(ctx, rows)
	if err != nil {
		return ImportResult{}, err
	}
	return ImportResult{Rows: len(rows), Created: created, Updated: updated}, nil
}

// ExportBills writes the bills matching filter, newest first.
func (s *Service) ExportBills(w io.Writer, filter mirror.BillFilter) (int, error) {
	bills, err := s.ListBills(filter)
	if err != nil {
		return 0, err
	}
	if len(bills) == 0 {
		return 0, fmt.Errorf("no bills to export: %w", ErrNothingToExport)
	}
	return len(bills), excel.WriteBills(w, bills, s.currency)
}

func (s *Service) ExportInventory(w io.Writer) (int, error) {
	items := s.mirror.Items()
	if len(items) == 0 {
		return 0, fmt.Errorf("no inventory items to export: %w", ErrNothingToExport)
	}
	return len(items), excel.WriteInventory(w, items)
}

func (s *Service) ExportSalesReport(ctx context.Context, w io.Writer, period repository.Period) (int, error) {
	report, err := s.repo.SalesByItem(ctx, period)
	if err != nil {
		return 0, err
	}
	if len(report) == 0 {
		return 0, fmt.Errorf("no sales in period: %w", ErrNothingToExport)
	}
	return len(report), excel.WriteSalesReport(w, report)
}

func (s *Service) ExportCustomers(ctx context.Context, w io.Writer, period repository.Period) (int, error) {
	customers, err := s.repo.CustomerTotals(ctx, period)
	if err != nil {
		return 0, err
	}
	if len(customers) == 0 {
		return 0, fmt.Errorf("no customers in period: %w", ErrNothingToExport)
	}
	return len(customers), excel.WriteCustomers(w, customers)
}

// BillPDF renders one bill with the current business profile and returns its file name.
func (s *Service) BillPDF(w io.Writer, id int64) (string, error) {
	bill, err := s.GetBill(id)
	if err != nil {
		return "", err
	}
	if err := pdf.WriteBill(w, bill, s.mirror.Profile(), s.currency); err != nil {
		return "", err
	}
	return pdf.FileName(bill), nil
}
