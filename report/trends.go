package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xraph/billing/types"
)

// DayLayout keys daily buckets.
const DayLayout = "2006-01-02"

// PaymentTrends summarizes payment volume and timing in the window.
type PaymentTrends struct {
	DailyVolumes       map[string]decimal.Decimal `json:"daily_volumes"`
	PaymentMethods     map[string]decimal.Decimal `json:"payment_methods"`
	AveragePaymentSize decimal.Decimal            `json:"average_payment_size"`
	// PaymentTiming counts payments by whole days between invoice creation
	// and payment.
	PaymentTiming map[int]int `json:"payment_timing"`
}

// ReportType implements Data.
func (*PaymentTrends) ReportType() Type { return TypePaymentTrends }

func (g *Generator) paymentTrends(ctx context.Context, period Period) (*PaymentTrends, error) {
	out := &PaymentTrends{
		DailyVolumes:   make(map[string]decimal.Decimal),
		PaymentMethods: make(map[string]decimal.Decimal),
		PaymentTiming:  make(map[int]int),
	}

	var (
		count int
		total = decimal.Zero
	)
	resolver := newInvoiceResolver(g.src)

	for p, err := range g.src.ScanPayments(ctx) {
		if err != nil {
			return nil, fmt.Errorf("report: scan payments: %w", err)
		}
		if !period.Contains(p.RecordedAt) {
			continue
		}

		count++
		total = total.Add(p.Amount)

		day := p.RecordedAt.Format(DayLayout)
		out.DailyVolumes[day] = out.DailyVolumes[day].Add(p.Amount)
		out.PaymentMethods[p.Method()] = out.PaymentMethods[p.Method()].Add(p.Amount)

		inv, err := resolver.resolve(ctx, p.InvoiceID)
		if err != nil {
			return nil, err
		}
		if inv != nil {
			out.PaymentTiming[types.DaysBetween(inv.CreatedAt, p.RecordedAt)]++
		}
	}

	out.AveragePaymentSize = types.Mean(total, count)
	return out, nil
}
