package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/xraph/billing/export"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/plugin"
	"github.com/xraph/billing/report"
	"github.com/xraph/billing/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin           = (*Notifier)(nil)
	_ plugin.InvoiceNotifier  = (*Notifier)(nil)
	_ plugin.ReminderNotifier = (*Notifier)(nil)
	_ plugin.PaymentNotifier  = (*Notifier)(nil)
	_ plugin.ReportNotifier   = (*Notifier)(nil)
)

// Notifier is a billing plugin that publishes notification events.
type Notifier struct {
	pub    Publisher
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets the logger for the notifier.
func WithLogger(l *slog.Logger) Option {
	return func(n *Notifier) { n.logger = l }
}

// WithClock sets the source of OccurredAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) { n.now = now }
}

// New creates a notifier publishing through pub.
func New(pub Publisher, opts ...Option) *Notifier {
	n := &Notifier{pub: pub, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name implements plugin.Plugin.
func (n *Notifier) Name() string { return "pubsub" }

// NotifyInvoiceCreated implements plugin.InvoiceNotifier.
func (n *Notifier) NotifyInvoiceCreated(ctx context.Context, inv *invoice.Invoice, to types.Recipient) error {
	return n.publish(ctx, &Event{Type: EventInvoiceCreated, Recipient: to, Invoice: inv})
}

// NotifyReminderDue implements plugin.ReminderNotifier.
func (n *Notifier) NotifyReminderDue(ctx context.Context, inv *invoice.Invoice, to types.Recipient, daysOverdue int) error {
	return n.publish(ctx, &Event{Type: EventReminderDue, Recipient: to, Invoice: inv, DaysOverdue: &daysOverdue})
}

// NotifyPaymentConfirmed implements plugin.PaymentNotifier.
func (n *Notifier) NotifyPaymentConfirmed(ctx context.Context, p *payment.Payment, inv *invoice.Invoice, to types.Recipient) error {
	return n.publish(ctx, &Event{Type: EventPaymentConfirmed, Recipient: to, Invoice: inv, Payment: p})
}

// NotifyReportReady implements plugin.ReportNotifier.
func (n *Notifier) NotifyReportReady(ctx context.Context, rep *report.Report, to types.Recipient, table *export.Artifact) error {
	ref := &ReportRef{
		Type:        rep.Type,
		Start:       rep.Period.Start,
		End:         rep.Period.End,
		GeneratedAt: rep.GeneratedAt,
		Summary:     rep.Summary(),
	}
	if table != nil {
		ref.Attachment = &AttachmentRef{Name: table.Name, ContentType: table.ContentType, Location: table.Location}
	}
	return n.publish(ctx, &Event{Type: EventReportReady, Recipient: to, Report: ref})
}

func (n *Notifier) publish(ctx context.Context, ev *Event) error {
	ev.ID = uuid.NewString()
	ev.OccurredAt = n.now().UTC()

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("pubsub: marshal %s: %w", ev.Type, err)
	}

	msgID, err := n.pub.Publish(ctx, data, map[string]string{
		"event_type": string(ev.Type),
		"event_id":   ev.ID,
	})
	if err != nil {
		return fmt.Errorf("pubsub: publish %s: %w", ev.Type, err)
	}

	n.logger.Debug("event published", "type", ev.Type, "event_id", ev.ID, "message_id", msgID)
	return nil
}
