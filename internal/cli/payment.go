package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xraph/billing"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/internal/render"
)

func newPaymentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Record and inspect payments",
	}
	cmd.AddCommand(newPaymentRecordCmd(a))
	cmd.AddCommand(newPaymentGetCmd(a))
	return cmd
}

func newPaymentRecordCmd(a *app) *cobra.Command {
	var (
		in        billing.RecordPaymentInput
		amountStr string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a payment against an invoice",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			amount, err := parseAmount(amountStr)
			if err != nil {
				return err
			}
			in.Amount = amount

			payID, err := a.engine.RecordPayment(cmd.Context(), in)
			if payID != "" {
				if a.jsonOutput {
					if jerr := a.printJSON(cmd, map[string]string{"payment_id": payID}); jerr != nil {
						return jerr
					}
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), payID)
				}
			}
			return err
		}),
	}

	cmd.Flags().StringVar(&in.InvoiceID, "invoice", "", "Invoice ID")
	cmd.Flags().StringVar(&amountStr, "amount", "", "Amount paid")
	cmd.Flags().StringVar(&in.PaymentMethod, "method", "", "Payment method")
	return cmd
}

func newPaymentGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <payment-id>",
		Short: "Show a payment",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if err := checkKind(args[0], id.PrefixPayment); err != nil {
				return err
			}
			p, ok, err := a.engine.GetPayment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", billing.ErrPaymentNotFound, args[0])
			}
			if a.jsonOutput {
				return a.printJSON(cmd, p)
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Payment(p))
			return nil
		}),
	}
}
