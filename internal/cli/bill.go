package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"billing/internal/domain"
	"billing/internal/ledger"
	"billing/internal/mirror"
	"billing/internal/pdf"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type billFlags struct {
	kind  string
	party string
	mode  string
	items []string
}

func (f *billFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.kind, "kind", "k", "sale", "Bill kind: sale or purchase")
	cmd.Flags().StringVarP(&f.party, "party", "p", "", "Customer or supplier name")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "Cash", "Payment mode")
	cmd.Flags().StringArrayVarP(&f.items, "item", "i", nil, `Line as "name:qty:price" (repeatable)`)
	_ = cmd.MarkFlagRequired("party")
	_ = cmd.MarkFlagRequired("item")
}

func (f *billFlags) draft() (domain.BillDraft, error) {
	kind, err := domain.ParseBillKind(f.kind)
	if err != nil {
		return domain.BillDraft{}, err
	}
	lines := make([]domain.LineInput, 0, len(f.items))
	for _, raw := range f.items {
		line, err := parseLine(raw)
		if err != nil {
			return domain.BillDraft{}, err
		}
		lines = append(lines, line)
	}
	return domain.BillDraft{Kind: kind, Counterparty: f.party, Mode: f.mode, Lines: lines}, nil
}

// parseLine reads "name:qty:price". The name may itself contain colons.
func parseLine(raw string) (domain.LineInput, error) {
	priceSep := strings.LastIndex(raw, ":")
	if priceSep <= 0 {
		return domain.LineInput{}, &domain.ValidationError{Field: "item", Message: fmt.Sprintf("%q must look like name:qty:price", raw)}
	}
	qtySep := strings.LastIndex(raw[:priceSep], ":")
	if qtySep <= 0 {
		return domain.LineInput{}, &domain.ValidationError{Field: "item", Message: fmt.Sprintf("%q must look like name:qty:price", raw)}
	}

	qty, err := strconv.Atoi(strings.TrimSpace(raw[qtySep+1 : priceSep]))
	if err != nil {
		return domain.LineInput{}, &domain.ValidationError{Field: "item", Message: fmt.Sprintf("%q has a non-integer quantity", raw)}
	}
	price, err := decimal.NewFromString(strings.TrimSpace(raw[priceSep+1:]))
	if err != nil {
		return domain.LineInput{}, &domain.ValidationError{Field: "item", Message: fmt.Sprintf("%q has an invalid price", raw)}
	}
	return domain.LineInput{Name: strings.TrimSpace(raw[:qtySep]), Quantity: qty, Price: price}, nil
}

func newBillCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Create, edit, delete and list bills",
	}
	cmd.AddCommand(
		newBillAddCommand(a),
		newBillCheckCommand(a),
		newBillEditCommand(a),
		newBillDeleteCommand(a),
		newBillListCommand(a),
		newBillShowCommand(a),
		newBillPDFCommand(a),
	)
	return cmd
}

func newBillAddCommand(a *app) *cobra.Command {
	flags := &billFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new sale or purchase bill",
		Example: `  billing bill add --party Asha --item "Widget:2:10" --item "Gadget:1:4.50"
  billing bill add --kind purchase --party Supplier --mode Credit --item "Widget:10:3"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft, err := flags.draft()
			if err != nil {
				return err
			}
			res, err := a.svc.CreateBill(cmd.Context(), draft)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), a, "created", res)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newBillCheckCommand(a *app) *cobra.Command {
	flags := &billFlags{}
	var editing int64
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report stock shortages for a bill without saving it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft, err := flags.draft()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			shortages := a.svc.CheckStock(draft, editing)
			if len(shortages) == 0 {
				fmt.Fprintln(out, "stock ok")
				return nil
			}
			for _, s := range shortages {
				fmt.Fprintf(out, "warning: %s\n", s)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().Int64Var(&editing, "editing", 0, "Id of the bill this draft replaces")
	return cmd
}

func newBillEditCommand(a *app) *cobra.Command {
	flags := &billFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a bill's kind, party, mode and lines",
		Long: `Replace a bill. Its stock effect is reversed and the new lines are applied.
The bill number is kept when the kind is unchanged; otherwise the bill takes the next
number of its new kind.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBillID(args[0])
			if err != nil {
				return err
			}
			draft, err := flags.draft()
			if err != nil {
				return err
			}
			res, err := a.svc.EditBill(cmd.Context(), id, draft)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), a, "updated", res)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newBillDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a bill and reverse its stock effect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBillID(args[0])
			if err != nil {
				return err
			}
			bill, err := a.svc.GetBill(id)
			if err != nil {
				return err
			}
			if err := a.svc.DeleteBill(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s bill #%d\n", bill.Kind, bill.SequenceNo)
			return nil
		},
	}
}

func newBillListCommand(a *app) *cobra.Command {
	var kind, search, from, to string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bills, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := mirror.BillFilter{Text: search, From: from, To: to}
			if kind != "" && !strings.EqualFold(kind, "all") {
				k, err := domain.ParseBillKind(kind)
				if err != nil {
					return err
				}
				filter.Kind = k
			}
			bills, err := a.svc.ListBills(filter)
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout(), "ID", "BILL NO", "DATE", "TYPE", "PARTY", "ITEMS", "QTY", "MODE", "TOTAL")
			for _, b := range bills {
				t.row(b.ID, b.SequenceNo, b.Date, b.Kind, b.Counterparty, b.ItemsSummary(), b.TotalQuantity(), b.Mode, a.money(b.GrandTotal))
			}
			return t.flush()
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Only sale or purchase bills")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Match bill number, party or first item")
	cmd.Flags().StringVar(&from, "from", "", "Earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Latest date (YYYY-MM-DD)")
	return cmd
}

func newBillShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one bill with its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBillID(args[0])
			if err != nil {
				return err
			}
			bill, err := a.svc.GetBill(id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s #%d  %s  %s  (%s)\n", bill.Kind, bill.SequenceNo, bill.Date, bill.Counterparty, bill.Mode)
			t := newTable(out, "S.NO", "ITEM", "QTY", "PRICE", "TOTAL")
			for i, line := range bill.Lines {
				t.row(i+1, line.Name, line.Quantity, a.money(line.Price), a.money(line.Total))
			}
			if err := t.flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Grand total: %s\n", a.money(bill.GrandTotal))
			return nil
		},
	}
}

func newBillPDFCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "pdf <id>",
		Short: "Write a bill as a PDF invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBillID(args[0])
			if err != nil {
				return err
			}
			bill, err := a.svc.GetBill(id)
			if err != nil {
				return err
			}
			if output == "" {
				output = pdf.FileName(bill)
			}
			if err := writeFile(output, func(w io.Writer) error {
				_, err := a.svc.BillPDF(w, id)
				return err
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default Invoice_<kind>_<no>.pdf)")
	return cmd
}

func printResult(out io.Writer, a *app, verb string, res ledger.BillResult) {
	bill := res.Bill
	fmt.Fprintf(out, "%s %s bill #%d (id %d) for %s: %s\n", verb, bill.Kind, bill.SequenceNo, bill.ID, bill.Counterparty, a.money(bill.GrandTotal))
	for _, name := range res.Provisioned {
		fmt.Fprintf(out, "new item added to inventory: %s\n", name)
	}
	for _, s := range res.Warnings {
		fmt.Fprintf(out, "warning: %s\n", s)
	}
}

func parseBillID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: "id", Message: fmt.Sprintf("%q is not a bill id", raw)}
	}
	return id, nil
}

// writeFile creates path and removes it again when render fails.
func writeFile(path string, render func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(file); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
