package billing

import (
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/report"
	"github.com/xraph/billing/types"
)

// Re-export common types for convenience so users don't have to import the
// record packages.

// Invoice is re-exported from the invoice package.
type Invoice = invoice.Invoice

// InvoiceStatus is re-exported from the invoice package.
type InvoiceStatus = invoice.Status

// Payment is re-exported from the payment package.
type Payment = payment.Payment

// Report is re-exported from the report package.
type Report = report.Report

// ReportType is re-exported from the report package.
type ReportType = report.Type

// Recipient is re-exported from the types package.
type Recipient = types.Recipient

// Re-export invoice statuses
const (
	StatusPending      = invoice.StatusPending
	StatusPaid         = invoice.StatusPaid
	StatusOverdue      = invoice.StatusOverdue
	StatusReminderSent = invoice.StatusReminderSent
)

// Re-export report types
const (
	ReportRevenue        = report.TypeRevenue
	ReportOutstanding    = report.TypeOutstanding
	ReportClientAnalysis = report.TypeClientAnalysis
	ReportServiceMetrics = report.TypeServiceMetrics
	ReportPaymentTrends  = report.TypePaymentTrends
)

// Re-export helpers
var (
	FormatAmount = types.FormatAmount
	NewEntity    = types.NewEntity
)
