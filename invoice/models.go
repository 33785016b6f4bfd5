// Package invoice defines the invoice record and its storage contract.
package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/billing/types"
)

// Status is the lifecycle state of an invoice. The set is open: any
// non-empty value is stored as given.
type Status string

const (
	StatusPending      Status = "pending"
	StatusPaid         Status = "paid"
	StatusOverdue      Status = "overdue"
	StatusReminderSent Status = "reminder_sent"
)

// Invoice is a bill issued to a client.
type Invoice struct {
	types.Entity
	ID          string          `json:"id"`
	ClientName  string          `json:"client_name"`
	ClientEmail string          `json:"client_email,omitempty"`
	Services    []string        `json:"services"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	Status      Status          `json:"status"`
}

// Recipient returns the client as a notification addressee. The second
// result is false when the invoice carries no email.
func (inv *Invoice) Recipient() (types.Recipient, bool) {
	if inv.ClientEmail == "" {
		return types.Recipient{}, false
	}
	return types.Recipient{Email: inv.ClientEmail, Name: inv.ClientName}, true
}

// IsOverdue reports whether the invoice is still pending past its due date.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.Status == StatusPending && inv.DueDate.Before(now)
}

// DaysOverdue returns whole days elapsed since the due date. The value is
// negative while the invoice is not yet due.
func (inv *Invoice) DaysOverdue(now time.Time) int {
	return types.DaysBetween(inv.DueDate, now)
}
