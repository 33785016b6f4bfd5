// Package render formats billing records and reports for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xraph/billing/export"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/report"
	"github.com/xraph/billing/types"
)

// DateLayout is used for every rendered date.
const DateLayout = "2006-01-02"

var (
	accent  = lipgloss.Color("#2563EB")
	dim     = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle = lipgloss.NewStyle().Foreground(dim).Width(24)
	dimStyle   = lipgloss.NewStyle().Foreground(dim)

	statusStyles = map[invoice.Status]lipgloss.Style{
		invoice.StatusPaid:         lipgloss.NewStyle().Foreground(success).Bold(true),
		invoice.StatusOverdue:      lipgloss.NewStyle().Foreground(danger).Bold(true),
		invoice.StatusReminderSent: lipgloss.NewStyle().Foreground(warning),
	}
)

func status(s invoice.Status) string {
	if st, ok := statusStyles[s]; ok {
		return st.Render(string(s))
	}
	return string(s)
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label) + value + "\n")
}

// Invoice renders one invoice.
func Invoice(inv *invoice.Invoice) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Invoice "+inv.ID) + "\n")
	row(&b, "Client", inv.ClientName)
	if inv.ClientEmail != "" {
		row(&b, "Email", inv.ClientEmail)
	}
	row(&b, "Amount", types.FormatAmount(inv.Amount))
	row(&b, "Status", status(inv.Status))
	row(&b, "Created", inv.CreatedAt.Format(DateLayout))
	row(&b, "Due", inv.DueDate.Format(DateLayout))
	row(&b, "Services", strings.Join(inv.Services, ", "))
	return boxStyle.Render(strings.TrimSuffix(b.String(), "\n")) + "\n"
}

// Payment renders one payment.
func Payment(p *payment.Payment) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Payment "+p.ID) + "\n")
	row(&b, "Invoice", p.InvoiceID)
	row(&b, "Amount", types.FormatAmount(p.Amount))
	row(&b, "Method", p.PaymentMethod)
	row(&b, "Recorded", p.RecordedAt.Format(DateLayout))
	return boxStyle.Render(strings.TrimSuffix(b.String(), "\n")) + "\n"
}

// Invoices renders a list of invoices, one per line.
func Invoices(title string, invs []*invoice.Invoice) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + " " + dimStyle.Render(fmt.Sprintf("(%d)", len(invs))) + "\n")
	for _, inv := range invs {
		fmt.Fprintf(&b, "  %s  %s  %s  due %s  %s\n",
			inv.ID, inv.ClientName, types.FormatAmount(inv.Amount),
			inv.DueDate.Format(DateLayout), status(inv.Status))
	}
	return b.String()
}

// Report renders the headline figures of a report and, when present, where
// its table was exported.
func Report(rep *report.Report, art *export.Artifact) string {
	var b strings.Builder
	title := strings.ReplaceAll(string(rep.Type), "_", " ")
	b.WriteString(titleStyle.Render(strings.ToUpper(title[:1])+title[1:]+" report") + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s to %s",
		rep.Period.Start.Format(DateLayout), rep.Period.End.Format(DateLayout))) + "\n\n")
	for _, m := range rep.Summary() {
		row(&b, m.Label, m.Value)
	}
	if art != nil {
		b.WriteString("\n")
		row(&b, "Exported", art.Location)
	}
	return boxStyle.Render(strings.TrimSuffix(b.String(), "\n")) + "\n"
}
