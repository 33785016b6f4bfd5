package report

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/billing/invoice"
)

// Aging bucket keys.
const (
	Bucket30     = "30_days"
	Bucket60     = "60_days"
	Bucket90     = "90_days"
	Bucket90Plus = "90_plus_days"
)

// AgingBucket classifies days overdue. Bounds are inclusive at 30, 60 and
// 90. Invoices not yet due fall into the first bucket.
func AgingBucket(daysOverdue int) string {
	switch {
	case daysOverdue <= 30:
		return Bucket30
	case daysOverdue <= 60:
		return Bucket60
	case daysOverdue <= 90:
		return Bucket90
	default:
		return Bucket90Plus
	}
}

// AgingAnalysis holds the outstanding amount per aging bucket.
type AgingAnalysis struct {
	Days30     decimal.Decimal `json:"30_days"`
	Days60     decimal.Decimal `json:"60_days"`
	Days90     decimal.Decimal `json:"90_days"`
	Days90Plus decimal.Decimal `json:"90_plus_days"`
}

// Add accumulates amount into the bucket for daysOverdue.
func (a *AgingAnalysis) Add(daysOverdue int, amount decimal.Decimal) {
	switch AgingBucket(daysOverdue) {
	case Bucket30:
		a.Days30 = a.Days30.Add(amount)
	case Bucket60:
		a.Days60 = a.Days60.Add(amount)
	case Bucket90:
		a.Days90 = a.Days90.Add(amount)
	default:
		a.Days90Plus = a.Days90Plus.Add(amount)
	}
}

// OutstandingInvoice is one unpaid invoice in the outstanding report.
type OutstandingInvoice struct {
	InvoiceID   string          `json:"invoice_id"`
	ClientName  string          `json:"client_name"`
	Amount      decimal.Decimal `json:"amount"`
	DaysOverdue int             `json:"days_overdue"`
}

// Outstanding summarizes pending invoices due in the window.
type Outstanding struct {
	TotalOutstanding    decimal.Decimal      `json:"total_outstanding"`
	OutstandingCount    int                  `json:"outstanding_count"`
	AgingAnalysis       AgingAnalysis        `json:"aging_analysis"`
	OutstandingInvoices []OutstandingInvoice `json:"outstanding_invoices"`
}

// ReportType implements Data.
func (*Outstanding) ReportType() Type { return TypeOutstanding }

// Invoices are listed most overdue first.
func (g *Generator) outstanding(ctx context.Context, period Period, now time.Time) (*Outstanding, error) {
	out := &Outstanding{
		TotalOutstanding:    decimal.Zero,
		OutstandingInvoices: []OutstandingInvoice{},
	}

	for inv, err := range g.src.ScanInvoices(ctx) {
		if err != nil {
			return nil, fmt.Errorf("report: scan invoices: %w", err)
		}
		if inv.Status != invoice.StatusPending || !period.Contains(inv.DueDate) {
			continue
		}

		days := inv.DaysOverdue(now)
		out.OutstandingInvoices = append(out.OutstandingInvoices, OutstandingInvoice{
			InvoiceID:   inv.ID,
			ClientName:  inv.ClientName,
			Amount:      inv.Amount,
			DaysOverdue: days,
		})
		out.TotalOutstanding = out.TotalOutstanding.Add(inv.Amount)
		out.AgingAnalysis.Add(days, inv.Amount)
	}

	slices.SortFunc(out.OutstandingInvoices, func(a, b OutstandingInvoice) int {
		if a.DaysOverdue != b.DaysOverdue {
			return b.DaysOverdue - a.DaysOverdue
		}
		return strings.Compare(a.InvoiceID, b.InvoiceID)
	})

	out.OutstandingCount = len(out.OutstandingInvoices)
	return out, nil
}
