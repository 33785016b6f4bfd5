// Package observability provides a metrics extension for the billing engine
// that records lifecycle event counts through a MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/billing/export"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/plugin"
	"github.com/xraph/billing/report"
	"github.com/xraph/billing/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                 = (*MetricsExtension)(nil)
	_ plugin.OnInit                 = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceCreated       = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceStatusChanged = (*MetricsExtension)(nil)
	_ plugin.OnPaymentRecorded      = (*MetricsExtension)(nil)
	_ plugin.OnReportGenerated      = (*MetricsExtension)(nil)
	_ plugin.ReportNotifier         = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a billing plugin to automatically track billing metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Invoice metrics
	InvoiceCreated       Counter
	InvoiceStatusChanged Counter
	InvoicePaid          Counter
	InvoiceOverdue       Counter
	InvoiceAmount        Histogram

	// Payment metrics
	PaymentRecorded Counter
	PaymentAmount   Histogram

	// Report metrics
	ReportGenerated Counter
	ReportLatency   Histogram
	ReportExported  Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		InvoiceCreated:       factory.Counter("billing.invoice.created"),
		InvoiceStatusChanged: factory.Counter("billing.invoice.status_changed"),
		InvoicePaid:          factory.Counter("billing.invoice.paid"),
		InvoiceOverdue:       factory.Counter("billing.invoice.overdue"),
		InvoiceAmount:        factory.Histogram("billing.invoice.amount"),

		PaymentRecorded: factory.Counter("billing.payment.recorded"),
		PaymentAmount:   factory.Histogram("billing.payment.amount"),

		ReportGenerated: factory.Counter("billing.report.generated"),
		ReportLatency:   factory.Histogram("billing.report.latency_ms"),
		ReportExported:  factory.Counter("billing.report.exported"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	return nil
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceCreated implements plugin.OnInvoiceCreated.
func (m *MetricsExtension) OnInvoiceCreated(_ context.Context, inv *invoice.Invoice) error {
	m.InvoiceCreated.Inc()
	m.InvoiceAmount.Observe(inv.Amount.InexactFloat64())
	return nil
}

// OnInvoiceStatusChanged implements plugin.OnInvoiceStatusChanged.
func (m *MetricsExtension) OnInvoiceStatusChanged(_ context.Context, inv *invoice.Invoice, _ invoice.Status) error {
	m.InvoiceStatusChanged.Inc()
	switch inv.Status {
	case invoice.StatusPaid:
		m.InvoicePaid.Inc()
	case invoice.StatusOverdue:
		m.InvoiceOverdue.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentRecorded implements plugin.OnPaymentRecorded.
func (m *MetricsExtension) OnPaymentRecorded(_ context.Context, p *payment.Payment) error {
	m.PaymentRecorded.Inc()
	m.PaymentAmount.Observe(p.Amount.InexactFloat64())
	return nil
}

// ──────────────────────────────────────────────────
// Report hooks
// ──────────────────────────────────────────────────

// OnReportGenerated implements plugin.OnReportGenerated.
func (m *MetricsExtension) OnReportGenerated(_ context.Context, _ *report.Report, elapsed time.Duration) error {
	m.ReportGenerated.Inc()
	m.ReportLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}

// NotifyReportReady implements plugin.ReportNotifier. It counts reports
// delivered with an exported table.
func (m *MetricsExtension) NotifyReportReady(_ context.Context, _ *report.Report, _ types.Recipient, table *export.Artifact) error {
	if table != nil {
		m.ReportExported.Inc()
	}
	return nil
}
