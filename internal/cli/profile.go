package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProfileCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Business details printed on invoices",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the business profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.svc.Profile()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:    %s\n", p.Name)
			fmt.Fprintf(out, "Address: %s\n", p.Address)
			fmt.Fprintf(out, "Phone:   %s\n", p.Phone)
			fmt.Fprintf(out, "GSTIN:   %s\n", p.TaxID)
			return nil
		},
	}

	var name, address, phone, taxID string
	set := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields; unset flags keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.svc.Profile()
			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = name
			}
			if flags.Changed("address") {
				p.Address = address
			}
			if flags.Changed("phone") {
				p.Phone = phone
			}
			if flags.Changed("tax-id") {
				p.TaxID = taxID
			}
			saved, err := a.svc.SaveProfile(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved profile for %s\n", saved.Name)
			return nil
		},
	}
	set.Flags().StringVar(&name, "name", "", "Business name")
	set.Flags().StringVar(&address, "address", "", "Address")
	set.Flags().StringVar(&phone, "phone", "", "Phone")
	set.Flags().StringVar(&taxID, "tax-id", "", "GSTIN / tax id")

	cmd.AddCommand(show, set)
	return cmd
}
