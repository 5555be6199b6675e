package cli

import (
	"fmt"
	"strconv"

	"billing/internal/ledger"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type productFlags struct {
	name     string
	stock    int
	cost     string
	sale     string
	category string
	reorder  int
}

func newProductCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "product",
		Aliases: []string{"products", "inventory"},
		Short:   "Manage inventory items",
	}
	cmd.AddCommand(
		newProductAddCommand(a),
		newProductEditCommand(a),
		newProductDeleteCommand(a),
		newProductStockCommand(a),
		newProductAdjustCommand(a),
		newProductListCommand(a),
		newProductSummaryCommand(a),
	)
	return cmd
}

func newProductAddCommand(a *app) *cobra.Command {
	f := &productFlags{}
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an inventory item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, err := parseMoney("cost", f.cost)
			if err != nil {
				return err
			}
			sale, err := parseMoney("sale", f.sale)
			if err != nil {
				return err
			}
			in := ledger.ProductInput{Name: args[0], Stock: f.stock, CostPrice: cost, SalePrice: sale}
			if f.category != "" {
				in.Category = &f.category
			}
			if cmd.Flags().Changed("reorder") {
				in.ReorderLevel = &f.reorder
			}
			item, err := a.svc.AddProduct(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (stock %d, cost %s)\n", item.Name, item.Stock, a.money(item.CostPrice))
			return nil
		},
	}
	cmd.Flags().IntVar(&f.stock, "stock", 0, "Opening stock")
	cmd.Flags().StringVar(&f.cost, "cost", "0", "Cost price")
	cmd.Flags().StringVar(&f.sale, "sale", "0", "Sale price")
	cmd.Flags().StringVar(&f.category, "category", "", "Category")
	cmd.Flags().IntVar(&f.reorder, "reorder", 5, "Reorder level")
	return cmd
}

func newProductEditCommand(a *app) *cobra.Command {
	f := &productFlags{}
	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Rename or reprice an item; stock is unchanged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.svc.GetItem(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			in := ledger.ProductInput{
				Name:         current.Name,
				CostPrice:    current.CostPrice,
				SalePrice:    current.SalePrice,
				Category:     current.Category,
				ReorderLevel: &current.ReorderLevel,
			}
			if flags.Changed("name") {
				in.Name = f.name
			}
			if flags.Changed("cost") {
				if in.CostPrice, err = parseMoney("cost", f.cost); err != nil {
					return err
				}
			}
			if flags.Changed("sale") {
				if in.SalePrice, err = parseMoney("sale", f.sale); err != nil {
					return err
				}
			}
			if flags.Changed("category") {
				in.Category = &f.category
			}
			if flags.Changed("reorder") {
				in.ReorderLevel = &f.reorder
			}
			item, err := a.svc.EditProduct(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", item.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.name, "name", "", "New name")
	cmd.Flags().StringVar(&f.cost, "cost", "", "Cost price")
	cmd.Flags().StringVar(&f.sale, "sale", "", "Sale price")
	cmd.Flags().StringVar(&f.category, "category", "", "Category (empty clears it)")
	cmd.Flags().IntVar(&f.reorder, "reorder", 0, "Reorder level")
	return cmd
}

func newProductDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an item; bills that name it are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			referenced, err := a.svc.DeleteProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "deleted %s\n", args[0])
			if referenced {
				fmt.Fprintln(out, "note: existing bills still list this item")
			}
			return nil
		},
	}
}

func newProductStockCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stock <name> <quantity>",
		Short: "Set an item's stock to an absolute quantity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be an integer: %q", args[1])
			}
			item, err := a.svc.SetStock(cmd.Context(), args[0], qty)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s stock %d\n", item.Name, item.Stock)
			return nil
		},
	}
}

func newProductAdjustCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "adjust <name> <delta>",
		Short: "Add a signed delta to an item's stock, creating the item if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("delta must be an integer: %q", args[1])
			}
			item, err := a.svc.AdjustStock(cmd.Context(), args[0], delta)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s stock %d\n", item.Name, item.Stock)
			return nil
		},
	}
}

func newProductListCommand(a *app) *cobra.Command {
	var low bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List inventory items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items := a.svc.Items()
			if low {
				items = a.svc.LowStock()
			}
			t := newTable(cmd.OutOrStdout(), "NAME", "CATEGORY", "STOCK", "REORDER", "COST", "SALE", "VALUE")
			for _, item := range items {
				category := "-"
				if item.Category != nil {
					category = *item.Category
				}
				t.row(item.Name, category, item.Stock, item.ReorderLevel, a.money(item.CostPrice), a.money(item.SalePrice), a.money(item.Value()))
			}
			return t.flush()
		},
	}
	cmd.Flags().BoolVar(&low, "low", false, "Only items at or below their reorder level")
	return cmd
}

func newProductSummaryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show item count, total stock and inventory value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.svc.InventorySummary()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Items:           %d\n", s.TotalItems)
			fmt.Fprintf(out, "Total stock:     %d\n", s.TotalStock)
			fmt.Fprintf(out, "Inventory value: %s\n", a.money(s.Value))
			fmt.Fprintf(out, "Low stock:       %d\n", s.LowStock)
			return nil
		},
	}
}

func parseMoney(field, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number: %q", field, raw)
	}
	return value, nil
}
