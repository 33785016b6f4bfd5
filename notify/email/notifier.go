package email

import (
	"context"
	"fmt"
	"log/slog"

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

// Notifier is a billing plugin that emails clients.
type Notifier struct {
	sender  Sender
	company string
	logger  *slog.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithCompany sets the company name used in subjects and signatures.
func WithCompany(name string) Option {
	return func(n *Notifier) { n.company = name }
}

// WithLogger sets the logger for the notifier.
func WithLogger(l *slog.Logger) Option {
	return func(n *Notifier) { n.logger = l }
}

// New creates an email notifier delivering through sender.
func New(sender Sender, opts ...Option) *Notifier {
	n := &Notifier{
		sender:  sender,
		company: DefaultConfig().Company,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewSMTP creates a notifier sending through the SMTP relay in cfg.
func NewSMTP(cfg Config, opts ...Option) *Notifier {
	if cfg.Company != "" {
		opts = append([]Option{WithCompany(cfg.Company)}, opts...)
	}
	return New(NewSMTPSender(cfg), opts...)
}

// Name implements plugin.Plugin.
func (n *Notifier) Name() string { return "email" }

// NotifyInvoiceCreated implements plugin.InvoiceNotifier.
func (n *Notifier) NotifyInvoiceCreated(ctx context.Context, inv *invoice.Invoice, to types.Recipient) error {
	body, err := render("invoice_created", map[string]any{
		"To":      to,
		"Company": n.company,
		"Invoice": inv,
	})
	if err != nil {
		return fmt.Errorf("email: render invoice: %w", err)
	}
	return n.send(ctx, &Message{
		To:      to,
		Subject: fmt.Sprintf("Invoice %s from %s", inv.ID, n.company),
		Body:    body,
	})
}

// NotifyReminderDue implements plugin.ReminderNotifier.
func (n *Notifier) NotifyReminderDue(ctx context.Context, inv *invoice.Invoice, to types.Recipient, daysOverdue int) error {
	body, err := render("reminder_"+Urgency(daysOverdue), map[string]any{
		"To":          to,
		"Company":     n.company,
		"Invoice":     inv,
		"DaysOverdue": daysOverdue,
	})
	if err != nil {
		return fmt.Errorf("email: render reminder: %w", err)
	}
	return n.send(ctx, &Message{
		To:      to,
		Subject: "Payment Reminder - Invoice " + inv.ID,
		Body:    body,
	})
}

// NotifyPaymentConfirmed implements plugin.PaymentNotifier.
func (n *Notifier) NotifyPaymentConfirmed(ctx context.Context, p *payment.Payment, inv *invoice.Invoice, to types.Recipient) error {
	method := p.PaymentMethod
	if method == "" {
		method = "Not specified"
	}
	body, err := render("payment_confirmed", map[string]any{
		"To":      to,
		"Company": n.company,
		"Invoice": inv,
		"Payment": p,
		"Method":  method,
	})
	if err != nil {
		return fmt.Errorf("email: render payment: %w", err)
	}
	return n.send(ctx, &Message{
		To:      to,
		Subject: "Payment Confirmation - Invoice " + inv.ID,
		Body:    body,
	})
}

// NotifyReportReady implements plugin.ReportNotifier. table, when present,
// is attached to the message.
func (n *Notifier) NotifyReportReady(ctx context.Context, rep *report.Report, to types.Recipient, table *export.Artifact) error {
	reportTitle := title(string(rep.Type))

	data := map[string]any{
		"To":      to,
		"Company": n.company,
		"Report":  rep,
		"Title":   reportTitle,
		"Summary": rep.Summary(),
	}
	msg := &Message{
		To: to,
		Subject: fmt.Sprintf("%s Report - %s to %s", reportTitle,
			rep.Period.Start.Format(DateLayout), rep.Period.End.Format(DateLayout)),
	}
	if table != nil {
		data["Attachment"] = table.Name
		msg.Attachments = []Attachment{{Name: table.Name, ContentType: table.ContentType, Data: table.Data}}
	}

	body, err := render("report_ready", data)
	if err != nil {
		return fmt.Errorf("email: render report: %w", err)
	}
	msg.Body = body
	return n.send(ctx, msg)
}

func (n *Notifier) send(ctx context.Context, msg *Message) error {
	if err := n.sender.Send(ctx, msg); err != nil {
		return err
	}
	n.logger.Debug("email sent", "to", msg.To.Email, "subject", msg.Subject)
	return nil
}
