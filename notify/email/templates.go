package email

import (
	"strings"
	"text/template"
	"time"

	"github.com/xraph/billing/types"
)

// DateLayout renders dates in message bodies.
const DateLayout = "January 2, 2006"

// Urgency levels of payment reminders.
const (
	UrgencyGentle = "gentle"
	UrgencyUrgent = "urgent"
	UrgencyFinal  = "final"
)

// Urgency picks the reminder tone for an invoice daysOverdue past due.
func Urgency(daysOverdue int) string {
	switch {
	case daysOverdue <= 30:
		return UrgencyGentle
	case daysOverdue <= 60:
		return UrgencyUrgent
	default:
		return UrgencyFinal
	}
}

var funcs = template.FuncMap{
	"money": types.FormatAmount,
	"date":  func(t time.Time) string { return t.Format(DateLayout) },
}

var templates = template.Must(template.New("email").Funcs(funcs).Parse(`
{{define "services"}}{{range .}}- {{.}}
{{end}}{{end}}

{{define "signature"}}Best regards,
{{.}} Billing Team{{end}}

{{define "invoice_created"}}Dear {{.To.Name}},

Thank you for choosing {{.Company}}. Please find your invoice details below:

Invoice Number: {{.Invoice.ID}}
Date: {{date .Invoice.CreatedAt}}
Due Date: {{date .Invoice.DueDate}}
Amount: {{money .Invoice.Amount}}

Services:
{{template "services" .Invoice.Services}}
To make a payment or view your invoice online, please visit our client portal.

If you have any questions, please don't hesitate to contact us.

{{template "signature" .Company}}{{end}}

{{define "reminder_gentle"}}Dear {{.To.Name}},

This is a friendly reminder that payment for invoice {{.Invoice.ID}} ({{date .Invoice.CreatedAt}})
for {{money .Invoice.Amount}} is now {{.DaysOverdue}} days overdue.

If you have already made the payment, please disregard this notice.
If not, we would appreciate your prompt attention to this matter.

You can make payment through our client portal or contact us for assistance.

{{template "signature" .Company}}{{end}}

{{define "reminder_urgent"}}Dear {{.To.Name}},

We notice that invoice {{.Invoice.ID}} for {{money .Invoice.Amount}} remains unpaid
and is now {{.DaysOverdue}} days overdue.

Please arrange for immediate payment or contact us if you are experiencing any difficulties.
Failure to respond may result in service interruption.

Invoice Details:
- Invoice Number: {{.Invoice.ID}}
- Original Due Date: {{date .Invoice.DueDate}}
- Amount Due: {{money .Invoice.Amount}}

{{template "signature" .Company}}{{end}}

{{define "reminder_final"}}Dear {{.To.Name}},

FINAL NOTICE

Invoice {{.Invoice.ID}} for {{money .Invoice.Amount}} is severely overdue
({{.DaysOverdue}} days).

If payment is not received within 7 days, we will have no choice but to:
1. Suspend all services
2. Refer the matter to our collections department
3. Apply late payment penalties as per our terms of service

To avoid these measures, please make immediate payment or contact us to discuss
payment arrangements.

{{template "signature" .Company}}{{end}}

{{define "payment_confirmed"}}Dear {{.To.Name}},

Thank you for your payment. This email confirms that we have received your payment
for invoice {{.Invoice.ID}}.

Payment Details:
- Amount: {{money .Payment.Amount}}
- Date: {{date .Payment.RecordedAt}}
- Method: {{.Method}}
- Transaction ID: {{.Payment.ID}}

Original Invoice Details:
- Invoice Number: {{.Invoice.ID}}
- Invoice Date: {{date .Invoice.CreatedAt}}
- Services:
{{template "services" .Invoice.Services}}
Thank you for your business!

{{template "signature" .Company}}{{end}}

{{define "report_ready"}}Dear {{.To.Name}},

Please find the {{.Title}} Report for the period:
{{date .Report.Period.Start}} to {{date .Report.Period.End}}

Report Summary:
{{range .Summary}}{{.Label}}: {{.Value}}
{{end}}{{with .Attachment}}
The complete report is attached as {{.}}.
{{end}}
{{template "signature" .Company}}{{end}}
`))

// render executes the named template.
func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// title turns "client_analysis" into "Client Analysis".
func title(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
