package cli

import (
	"fmt"

	"billing/internal/service"

	"github.com/spf13/cobra"
)

type periodFlags struct {
	from string
	to   string
}

func (p *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.from, "from", "", "Earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&p.to, "to", "", "Latest date (YYYY-MM-DD)")
}

func newReportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Sales, profit and customer reports",
	}
	cmd.AddCommand(
		newReportSummaryCommand(a),
		newReportSalesCommand(a),
		newReportCustomersCommand(a),
		newReportLedgerCommand(a),
		newReportMonthlyCommand(a),
	)
	return cmd
}

func newReportSummaryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Totals for sales, purchases, today and this month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.svc.Summary(cmd.Context())
			if err != nil {
				return err
			}
			inv := a.svc.InventorySummary()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total sales:     %s\n", a.money(s.TotalSales))
			fmt.Fprintf(out, "Total purchases: %s\n", a.money(s.TotalPurchases))
			fmt.Fprintf(out, "Net:             %s\n", a.money(s.Net))
			fmt.Fprintf(out, "Today's sales:   %s\n", a.money(s.Today))
			fmt.Fprintf(out, "Month to date:   %s\n", a.money(s.MonthToDate))
			fmt.Fprintf(out, "Total profit:    %s\n", a.money(s.Profit))
			fmt.Fprintf(out, "Inventory value: %s\n", a.money(inv.Value))
			fmt.Fprintf(out, "Low stock items: %d\n", inv.LowStock)
			return nil
		},
	}
}

func newReportSalesCommand(a *app) *cobra.Command {
	p := &periodFlags{}
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Units, revenue, cost and profit per item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			period, err := service.ParsePeriod(p.from, p.to)
			if err != nil {
				return err
			}
			rows, err := a.svc.SalesReport(cmd.Context(), period)
			if err != nil {
				return err
			}
			profit, err := a.svc.Profit(cmd.Context(), period)
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout(), "ITEM", "UNITS", "REVENUE", "COST", "PROFIT")
			for _, row := range rows {
				t.row(row.Name, row.Units, a.money(row.Revenue), a.money(row.Cost), a.money(row.Profit))
			}
			if err := t.flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Total profit: %s\n", a.money(profit))
			return nil
		},
	}
	p.register(cmd)
	return cmd
}

func newReportCustomersCommand(a *app) *cobra.Command {
	p := &periodFlags{}
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Sale bill count and total spent per customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			period, err := service.ParsePeriod(p.from, p.to)
			if err != nil {
				return err
			}
			rows, err := a.svc.Customers(cmd.Context(), period)
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout(), "CUSTOMER", "BILLS", "SPENT")
			for _, row := range rows {
				t.row(row.Name, row.Bills, a.money(row.Spent))
			}
			return t.flush()
		},
	}
	p.register(cmd)
	return cmd
}

func newReportLedgerCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger <name>",
		Short: "Sales, purchases and balance for one customer or supplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := a.svc.PartyLedger(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:            %s\n", row.Name)
			fmt.Fprintf(out, "Bills:           %d\n", row.Bills)
			fmt.Fprintf(out, "Total sales:     %s\n", a.money(row.Sales))
			fmt.Fprintf(out, "Total purchases: %s\n", a.money(row.Purchases))
			fmt.Fprintf(out, "Balance:         %s\n", a.money(row.Balance))
			return nil
		},
	}
}

func newReportMonthlyCommand(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Purchases, sales and profit per month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.svc.Monthly(cmd.Context(), limit)
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout(), "MONTH", "PURCHASES", "SALES", "PROFIT", "BILLS")
			for _, row := range rows {
				t.row(row.Month, a.money(row.PurchaseTotal), a.money(row.SalesTotal), a.money(row.Profit), row.BillCount)
			}
			return t.flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 12, "Number of months")
	return cmd
}
