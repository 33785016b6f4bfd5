package report

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/billing/types"
)

// PaymentEntry is one payment in a client's history.
type PaymentEntry struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

// ClientMetrics aggregates one client's activity.
type ClientMetrics struct {
	TotalSpent     decimal.Decimal `json:"total_spent"`
	InvoicesCount  int             `json:"invoices_count"`
	ServicesUsed   []string        `json:"services_used"`
	PaymentHistory []PaymentEntry  `json:"payment_history"`
}

func newClientMetrics() *ClientMetrics {
	return &ClientMetrics{
		TotalSpent:     decimal.Zero,
		ServicesUsed:   []string{},
		PaymentHistory: []PaymentEntry{},
	}
}

// useService records s once, keeping first-seen order.
func (m *ClientMetrics) useService(s string) {
	if !slices.Contains(m.ServicesUsed, s) {
		m.ServicesUsed = append(m.ServicesUsed, s)
	}
}

// ClientAnalysis groups activity by client name.
//
// Invoices are selected by created_at and payments by recorded_at, each
// against the same window but independently. A client's invoice count and
// total spent may therefore cover different invoices.
type ClientAnalysis struct {
	ClientMetrics      map[string]*ClientMetrics `json:"client_metrics"`
	TotalActiveClients int                       `json:"total_active_clients"`
	AverageClientSpend decimal.Decimal           `json:"average_client_spend"`
}

// ReportType implements Data.
func (*ClientAnalysis) ReportType() Type { return TypeClientAnalysis }

// Clients returns client names sorted alphabetically.
func (c *ClientAnalysis) Clients() []string {
	names := make([]string, 0, len(c.ClientMetrics))
	for name := range c.ClientMetrics {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (g *Generator) clientAnalysis(ctx context.Context, period Period) (*ClientAnalysis, error) {
	clients := make(map[string]*ClientMetrics)
	metrics := func(name string) *ClientMetrics {
		m, ok := clients[name]
		if !ok {
			m = newClientMetrics()
			clients[name] = m
		}
		return m
	}

	for inv, err := range g.src.ScanInvoices(ctx) {
		if err != nil {
			return nil, fmt.Errorf("report: scan invoices: %w", err)
		}
		if !period.Contains(inv.CreatedAt) {
			continue
		}
		m := metrics(inv.ClientName)
		m.InvoicesCount++
		for _, s := range inv.Services {
			m.useService(s)
		}
	}

	resolver := newInvoiceResolver(g.src)
	for p, err := range g.src.ScanPayments(ctx) {
		if err != nil {
			return nil, fmt.Errorf("report: scan payments: %w", err)
		}
		if !period.Contains(p.RecordedAt) {
			continue
		}
		inv, err := resolver.resolve(ctx, p.InvoiceID)
		if err != nil {
			return nil, err
		}
		if inv == nil {
			continue
		}
		m := metrics(inv.ClientName)
		m.TotalSpent = m.TotalSpent.Add(p.Amount)
		m.PaymentHistory = append(m.PaymentHistory, PaymentEntry{
			Date:   p.RecordedAt,
			Amount: p.Amount,
			Method: p.Method(),
		})
	}

	total := decimal.Zero
	for _, m := range clients {
		slices.SortStableFunc(m.PaymentHistory, func(a, b PaymentEntry) int {
			return a.Date.Compare(b.Date)
		})
		total = total.Add(m.TotalSpent)
	}

	return &ClientAnalysis{
		ClientMetrics:      clients,
		TotalActiveClients: len(clients),
		AverageClientSpend: types.Mean(total, len(clients)),
	}, nil
}
