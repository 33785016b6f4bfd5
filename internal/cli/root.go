// Package cli implements the billing command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/xraph/billing"
)

var (
	version = "dev"
	commit  = "none"
)

// app is the state shared by subcommands for one invocation.
type app struct {
	configPath string
	jsonOutput bool

	engine *billing.Engine
	close  func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "billing",
		Short:         "Invoices, payments and billing reports",
		Long:          "billing records invoices and payments, tracks overdue balances and generates revenue, aging, client, service and payment trend reports.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (default ./billing.yaml)")
	cmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output JSON")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newInvoiceCmd(a))
	cmd.AddCommand(newPaymentCmd(a))
	cmd.AddCommand(newReportCmd(a))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
