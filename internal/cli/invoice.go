package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/xraph/billing"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/internal/render"
)

func newInvoiceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Create, inspect and update invoices",
	}
	cmd.AddCommand(newInvoiceCreateCmd(a))
	cmd.AddCommand(newInvoiceGetCmd(a))
	cmd.AddCommand(newInvoiceStatusCmd(a))
	cmd.AddCommand(newInvoiceOverdueCmd(a))
	cmd.AddCommand(newInvoiceMarkOverdueCmd(a))
	return cmd
}

func newInvoiceCreateCmd(a *app) *cobra.Command {
	var (
		in        billing.CreateInvoiceInput
		amountStr string
		dueStr    string
		dueInDays int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a pending invoice",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			amount, err := parseAmount(amountStr)
			if err != nil {
				return err
			}
			in.Amount = amount

			if dueStr != "" {
				due, err := parseDate("due", dueStr)
				if err != nil {
					return err
				}
				in.DueDate = &due
			}
			if cmd.Flags().Changed("due-in-days") {
				in.DueInDays = &dueInDays
			}

			invID, err := a.engine.CreateInvoice(cmd.Context(), in)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(cmd, map[string]string{"invoice_id": invID})
			}
			fmt.Fprintln(cmd.OutOrStdout(), invID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&in.ClientName, "client", "", "Client name")
	cmd.Flags().StringVar(&in.ClientEmail, "email", "", "Client email for notifications")
	cmd.Flags().StringSliceVar(&in.Services, "service", nil, "Billed service (repeatable)")
	cmd.Flags().StringVar(&amountStr, "amount", "", "Invoice amount")
	cmd.Flags().StringVar(&dueStr, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&dueInDays, "due-in-days", 0, "Days until due")
	return cmd
}

func newInvoiceGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <invoice-id>",
		Short: "Show an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if err := checkKind(args[0], id.PrefixInvoice); err != nil {
				return err
			}
			inv, ok, err := a.engine.GetInvoice(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", billing.ErrInvoiceNotFound, args[0])
			}
			if a.jsonOutput {
				return a.printJSON(cmd, inv)
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Invoice(inv))
			return nil
		}),
	}
}

func newInvoiceStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <invoice-id> <status>",
		Short: "Set an invoice status",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ok, err := a.engine.UpdateStatus(cmd.Context(), args[0], billing.InvoiceStatus(args[1]))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", billing.ErrInvoiceNotFound, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], args[1])
			return nil
		}),
	}
}

func newInvoiceOverdueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List pending invoices past their due date",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			invs, err := a.engine.ListOverdue(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(cmd, invs)
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Invoices("Overdue invoices", invs))
			return nil
		}),
	}
}

func newInvoiceMarkOverdueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mark-overdue",
		Short: "Mark every pending invoice past its due date as overdue",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			n, err := a.engine.MarkOverdue(cmd.Context())
			if a.jsonOutput && err == nil {
				return a.printJSON(cmd, map[string]int{"marked": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d invoice(s) marked overdue\n", n)
			return err
		}),
	}
}

// parseAmount returns nil for an empty flag so validation reports the
// field as missing.
func parseAmount(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --amount %q", s)
	}
	return &d, nil
}
