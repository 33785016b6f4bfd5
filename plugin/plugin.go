// Package plugin provides the extension points of the billing engine.
//
// Plugins implement Plugin plus any subset of the hook interfaces below.
// Lifecycle hooks observe record changes (audit, metrics); notifier hooks
// receive the client-facing events (invoice created, reminder due, payment
// confirmed, report ready) and are responsible for delivering them.
package plugin

import (
	"context"
	"time"

	"github.com/xraph/billing/export"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/report"
	"github.com/xraph/billing/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts. engine is the *billing.Engine.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine any) error
}

// OnShutdown is called when the engine stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Record hooks
// ──────────────────────────────────────────────────

// OnInvoiceCreated is called after a new invoice is persisted.
type OnInvoiceCreated interface {
	Plugin
	OnInvoiceCreated(ctx context.Context, inv *invoice.Invoice) error
}

// OnInvoiceStatusChanged is called after an invoice status update is
// persisted. previous is the status before the update.
type OnInvoiceStatusChanged interface {
	Plugin
	OnInvoiceStatusChanged(ctx context.Context, inv *invoice.Invoice, previous invoice.Status) error
}

// OnPaymentRecorded is called after a payment is persisted, before any
// settlement of the referenced invoice.
type OnPaymentRecorded interface {
	Plugin
	OnPaymentRecorded(ctx context.Context, p *payment.Payment) error
}

// OnReportGenerated is called after a report has been computed.
type OnReportGenerated interface {
	Plugin
	OnReportGenerated(ctx context.Context, rep *report.Report, elapsed time.Duration) error
}

// ──────────────────────────────────────────────────
// Notifier hooks
// ──────────────────────────────────────────────────

// InvoiceNotifier delivers the invoice_created event to the client.
type InvoiceNotifier interface {
	Plugin
	NotifyInvoiceCreated(ctx context.Context, inv *invoice.Invoice, to types.Recipient) error
}

// ReminderNotifier delivers the reminder_due event. daysOverdue may be
// negative when an invoice is marked overdue before its due date.
type ReminderNotifier interface {
	Plugin
	NotifyReminderDue(ctx context.Context, inv *invoice.Invoice, to types.Recipient, daysOverdue int) error
}

// PaymentNotifier delivers the payment_confirmed event.
type PaymentNotifier interface {
	Plugin
	NotifyPaymentConfirmed(ctx context.Context, p *payment.Payment, inv *invoice.Invoice, to types.Recipient) error
}

// ReportNotifier delivers the report_ready event. table is nil when no
// tabular attachment was requested.
type ReportNotifier interface {
	Plugin
	NotifyReportReady(ctx context.Context, rep *report.Report, to types.Recipient, table *export.Artifact) error
}
