package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xraph/billing/types"
)

// MonthLayout keys monthly buckets.
const MonthLayout = "2006-01"

// Revenue summarizes payments received in the window.
type Revenue struct {
	TotalRevenue          decimal.Decimal            `json:"total_revenue"`
	PaidInvoicesCount     int                        `json:"paid_invoices_count"`
	PaidInvoices          []string                   `json:"paid_invoices"`
	MonthlyBreakdown      map[string]decimal.Decimal `json:"monthly_breakdown"`
	PaymentMethods        map[string]decimal.Decimal `json:"payment_methods"`
	AverageMonthlyRevenue decimal.Decimal            `json:"average_monthly_revenue"`
}

// ReportType implements Data.
func (*Revenue) ReportType() Type { return TypeRevenue }

// PaidInvoices lists the invoice reference of every payment, so an invoice
// settled in two payments appears twice.
func (g *Generator) revenue(ctx context.Context, period Period) (*Revenue, error) {
	out := &Revenue{
		TotalRevenue:     decimal.Zero,
		PaidInvoices:     []string{},
		MonthlyBreakdown: make(map[string]decimal.Decimal),
		PaymentMethods:   make(map[string]decimal.Decimal),
	}

	for p, err := range g.src.ScanPayments(ctx) {
		if err != nil {
			return nil, fmt.Errorf("report: scan payments: %w", err)
		}
		if !period.Contains(p.RecordedAt) {
			continue
		}

		out.TotalRevenue = out.TotalRevenue.Add(p.Amount)
		out.PaidInvoices = append(out.PaidInvoices, p.InvoiceID)

		month := p.RecordedAt.Format(MonthLayout)
		out.MonthlyBreakdown[month] = out.MonthlyBreakdown[month].Add(p.Amount)
		out.PaymentMethods[p.Method()] = out.PaymentMethods[p.Method()].Add(p.Amount)
	}

	out.PaidInvoicesCount = len(out.PaidInvoices)
	out.AverageMonthlyRevenue = types.Mean(out.TotalRevenue, len(out.MonthlyBreakdown))
	return out, nil
}
