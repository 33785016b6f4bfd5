// Package pubsub publishes billing notifications to a Google Cloud Pub/Sub
// topic as JSON events, for delivery by downstream consumers.
package pubsub

import (
	"time"

	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/report"
	"github.com/xraph/billing/types"
)

// EventType names a notification event.
type EventType string

const (
	EventInvoiceCreated   EventType = "invoice_created"
	EventReminderDue      EventType = "reminder_due"
	EventPaymentConfirmed EventType = "payment_confirmed"
	EventReportReady      EventType = "report_ready"
)

// Event is the JSON payload of a published message.
type Event struct {
	ID          string           `json:"id"`
	Type        EventType        `json:"type"`
	OccurredAt  time.Time        `json:"occurred_at"`
	Recipient   types.Recipient  `json:"recipient"`
	Invoice     *invoice.Invoice `json:"invoice,omitempty"`
	Payment     *payment.Payment `json:"payment,omitempty"`
	Report      *ReportRef       `json:"report,omitempty"`
	DaysOverdue *int             `json:"days_overdue,omitempty"`
}

// ReportRef describes a generated report without its data.
type ReportRef struct {
	Type        report.Type     `json:"type"`
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	GeneratedAt time.Time       `json:"generated_at"`
	Summary     []report.Metric `json:"summary"`
	Attachment  *AttachmentRef  `json:"attachment,omitempty"`
}

// AttachmentRef points at an exported report table. Content is not inlined;
// consumers fetch it from Location.
type AttachmentRef struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Location    string `json:"location"`
}
