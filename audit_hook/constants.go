package audithook

// Action constants for audit events.
const (
	// Invoice actions
	ActionInvoiceCreated       = "invoice.created"
	ActionInvoiceStatusChanged = "invoice.status_changed"
	ActionInvoicePaid          = "invoice.paid"
	ActionInvoiceOverdue       = "invoice.overdue"

	// Payment actions
	ActionPaymentRecorded = "payment.recorded"

	// Report actions
	ActionReportGenerated = "report.generated"
)

// Resource constants for audit events.
const (
	ResourceInvoice = "invoice"
	ResourcePayment = "payment"
	ResourceReport  = "report"
)

// Category constants for audit events.
const (
	CategoryBilling   = "billing"
	CategoryPayment   = "payment"
	CategoryReporting = "reporting"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
