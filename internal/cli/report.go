package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xraph/billing"
	"github.com/xraph/billing/export"
	"github.com/xraph/billing/internal/render"
	"github.com/xraph/billing/report"
)

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate billing reports",
	}
	cmd.AddCommand(newReportGenerateCmd(a))
	return cmd
}

func newReportGenerateCmd(a *app) *cobra.Command {
	var (
		startStr, endStr string
		format           string
		to               billing.Recipient
	)

	cmd := &cobra.Command{
		Use:       "generate <type>",
		Short:     "Generate a report over a date window",
		Long:      "Generate one of: revenue, outstanding, client_analysis, service_metrics, payment_trends.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: reportTypeNames(),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			end := time.Now().UTC()
			if endStr != "" {
				t, err := parseDate("end", endStr)
				if err != nil {
					return err
				}
				// The end date covers the whole day.
				end = t.Add(24*time.Hour - time.Nanosecond)
			}
			start := end.AddDate(0, 0, -30)
			if startStr != "" {
				t, err := parseDate("start", startStr)
				if err != nil {
					return err
				}
				start = t
			}

			req := billing.ReportRequest{
				Type:   report.Type(args[0]),
				Start:  start,
				End:    end,
				Format: export.Format(format),
			}
			if !to.IsZero() {
				req.EmailTo = &to
			}

			res, err := a.engine.GenerateReport(cmd.Context(), req)
			if res == nil {
				return err
			}
			if a.jsonOutput {
				if jerr := a.printJSON(cmd, res.Report); jerr != nil {
					return jerr
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), render.Report(res.Report, res.Export))
			}
			return err
		}),
	}

	cmd.Flags().StringVar(&startStr, "start", "", "Window start (YYYY-MM-DD, default 30 days before end)")
	cmd.Flags().StringVar(&endStr, "end", "", "Window end, inclusive (YYYY-MM-DD, default now)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format: json, csv or xlsx")
	cmd.Flags().StringVar(&to.Email, "email", "", "Send the report to this address")
	cmd.Flags().StringVar(&to.Name, "name", "", "Recipient name")
	return cmd
}

func reportTypeNames() []string {
	types := report.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}
