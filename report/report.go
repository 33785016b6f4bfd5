// Package report derives financial summaries from stored billing records.
//
// Every report scans the full record set of the kinds it needs and keeps the
// records whose type-specific timestamp lies in the inclusive window
// [start, end]. Cost is linear in the total number of stored records, not in
// the size of the window.
package report

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/types"
)

// Type names a report algorithm.
type Type string

const (
	TypeRevenue        Type = "revenue"
	TypeOutstanding    Type = "outstanding"
	TypeClientAnalysis Type = "client_analysis"
	TypeServiceMetrics Type = "service_metrics"
	TypePaymentTrends  Type = "payment_trends"
)

// Types returns every supported report type.
func Types() []Type {
	return []Type{TypeRevenue, TypeOutstanding, TypeClientAnalysis, TypeServiceMetrics, TypePaymentTrends}
}

// Valid reports whether t is a supported report type.
func (t Type) Valid() bool {
	switch t {
	case TypeRevenue, TypeOutstanding, TypeClientAnalysis, TypeServiceMetrics, TypePaymentTrends:
		return true
	}
	return false
}

// ErrUnknownType is returned by Generate for unsupported report types.
var ErrUnknownType = errors.New("report: unknown type")

// ParseType converts s into a Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// Period is the inclusive reporting window.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within the period.
func (p Period) Contains(t time.Time) bool {
	return types.Within(t, p.Start, p.End)
}

// Data is the type-specific body of a report. It is one of *Revenue,
// *Outstanding, *ClientAnalysis, *ServiceMetrics or *PaymentTrends.
type Data interface {
	ReportType() Type
}

// Report is the dated envelope around a report body.
type Report struct {
	Type        Type      `json:"type"`
	Period      Period    `json:"period"`
	GeneratedAt time.Time `json:"generated_at"`
	Data        Data      `json:"data"`
}

// Source is the read side of the record store used by reports.
type Source interface {
	ScanInvoices(ctx context.Context) iter.Seq2[*invoice.Invoice, error]
	ScanPayments(ctx context.Context) iter.Seq2[*payment.Payment, error]
	GetInvoice(ctx context.Context, id string) (*invoice.Invoice, bool, error)
}

// Generator computes reports over a Source.
type Generator struct {
	src Source
	now func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the time source used for generated_at and for days
// overdue in the outstanding report.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a Generator reading from src.
func NewGenerator(src Source, opts ...Option) *Generator {
	g := &Generator{src: src, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate computes the report of type t over [start, end].
func (g *Generator) Generate(ctx context.Context, t Type, start, end time.Time) (*Report, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	now := g.now()
	period := Period{Start: start, End: end}

	var (
		data Data
		err  error
	)
	switch t {
	case TypeRevenue:
		data, err = g.revenue(ctx, period)
	case TypeOutstanding:
		data, err = g.outstanding(ctx, period, now)
	case TypeClientAnalysis:
		data, err = g.clientAnalysis(ctx, period)
	case TypeServiceMetrics:
		data, err = g.serviceMetrics(ctx, period)
	case TypePaymentTrends:
		data, err = g.paymentTrends(ctx, period)
	}
	if err != nil {
		return nil, err
	}

	return &Report{
		Type:        t,
		Period:      period,
		GeneratedAt: now.UTC(),
		Data:        data,
	}, nil
}

// invoiceResolver looks up payment targets, remembering each answer for the
// duration of one report.
type invoiceResolver struct {
	src  Source
	seen map[string]*invoice.Invoice
}

func newInvoiceResolver(src Source) *invoiceResolver {
	return &invoiceResolver{src: src, seen: make(map[string]*invoice.Invoice)}
}

// resolve returns nil for dangling references.
func (r *invoiceResolver) resolve(ctx context.Context, invoiceID string) (*invoice.Invoice, error) {
	if inv, ok := r.seen[invoiceID]; ok {
		return inv, nil
	}
	inv, found, err := r.src.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("report: resolve invoice %s: %w", invoiceID, err)
	}
	if !found {
		inv = nil
	}
	r.seen[invoiceID] = inv
	return inv, nil
}
