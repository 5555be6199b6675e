package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"billing/internal/domain"
	"billing/internal/mirror"
	"billing/internal/service"

	"github.com/spf13/cobra"
)

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Upsert inventory items from a spreadsheet",
		Long: `Read the first sheet of a workbook and create or update one inventory item per
row. Recognised headers include "Product Name", "Quantity"/"Stock", "Cost Price",
"Sale Price", "Category" and "Reorder Level".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer file.Close()

			res, err := a.svc.ImportInventory(cmd.Context(), file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows: %d created, %d updated\n", res.Rows, res.Created, res.Updated)
			return nil
		},
	}
}

var exportDefaults = map[string]string{
	"bills":     "bills_data.xlsx",
	"inventory": "inventory_data.xlsx",
	"sales":     "sales_report.xlsx",
	"customers": "customer_list.xlsx",
}

func newExportCommand(a *app) *cobra.Command {
	var output, from, to, kind string
	cmd := &cobra.Command{
		Use:       "export <bills|inventory|sales|customers>",
		Short:     "Export bills, inventory or reports to a spreadsheet",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bills", "inventory", "sales", "customers"},
		RunE: func(cmd *cobra.Command, args []string) error {
			what := strings.ToLower(args[0])
			if _, ok := exportDefaults[what]; !ok {
				return &domain.ValidationError{Field: "export", Message: fmt.Sprintf("unknown export %q", args[0])}
			}
			if output == "" {
				output = exportDefaults[what]
			}
			period, err := service.ParsePeriod(from, to)
			if err != nil {
				return err
			}

			var rows int
			err = writeFile(output, func(w io.Writer) error {
				var err error
				switch what {
				case "bills":
					filter := mirror.BillFilter{From: period.From, To: period.To}
					if kind != "" {
						if filter.Kind, err = domain.ParseBillKind(kind); err != nil {
							return err
						}
					}
					rows, err = a.svc.ExportBills(w, filter)
				case "inventory":
					rows, err = a.svc.ExportInventory(w)
				case "sales":
					rows, err = a.svc.ExportSalesReport(cmd.Context(), w, period)
				case "customers":
					rows, err = a.svc.ExportCustomers(cmd.Context(), w, period)
				}
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", rows, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file")
	cmd.Flags().StringVar(&from, "from", "", "Earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Latest date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Bill kind for bills export")
	return cmd
}
