// Package export turns reports into flat tables and writes them out as
// spreadsheet-friendly files.
package export

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xraph/billing/report"
)

// Table is an ordered set of columns and rows of scalar cells. Cells are
// string, int or decimal.Decimal.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Column names per report type.
var (
	RevenueColumns        = []string{"month", "revenue", "total_revenue"}
	OutstandingColumns    = []string{"invoice_id", "client_name", "amount", "days_overdue"}
	ClientAnalysisColumns = []string{"client_name", "total_spent", "invoices_count", "services"}
	ServiceMetricsColumns = []string{"service", "total_revenue", "usage_count", "client_count"}
	PaymentTrendsColumns  = []string{"date", "amount", "average_payment_size"}
)

// Flatten converts report data into a Table with one row per month,
// invoice, client, service or day. Rows keyed by name or date are sorted by
// that key. A nil or unrecognized body yields an empty table.
func Flatten(data report.Data) Table {
	switch d := data.(type) {
	case *report.Revenue:
		t := Table{Columns: RevenueColumns}
		for _, month := range sortedKeys(d.MonthlyBreakdown) {
			t.Rows = append(t.Rows, []any{month, d.MonthlyBreakdown[month], d.TotalRevenue})
		}
		return t

	case *report.Outstanding:
		t := Table{Columns: OutstandingColumns}
		for _, inv := range d.OutstandingInvoices {
			t.Rows = append(t.Rows, []any{inv.InvoiceID, inv.ClientName, inv.Amount, inv.DaysOverdue})
		}
		return t

	case *report.ClientAnalysis:
		t := Table{Columns: ClientAnalysisColumns}
		for _, name := range d.Clients() {
			m := d.ClientMetrics[name]
			t.Rows = append(t.Rows, []any{name, m.TotalSpent, m.InvoicesCount, strings.Join(m.ServicesUsed, ", ")})
		}
		return t

	case *report.ServiceMetrics:
		t := Table{Columns: ServiceMetricsColumns}
		for _, name := range d.Services() {
			s := d.ServiceMetrics[name]
			t.Rows = append(t.Rows, []any{name, s.TotalRevenue, s.UsageCount, len(s.Clients)})
		}
		return t

	case *report.PaymentTrends:
		t := Table{Columns: PaymentTrendsColumns}
		for _, day := range sortedKeys(d.DailyVolumes) {
			t.Rows = append(t.Rows, []any{day, d.DailyVolumes[day], d.AveragePaymentSize})
		}
		return t
	}
	return Table{}
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
