// Package record defines the JSON document shape shared by the stores that
// persist records as JSON (file, redis).
//
// Amounts are written as JSON numbers and Timestamps as RFC 3339. Documents
// written by older tooling with naive ISO-8601 Timestamps are still readable
// and are interpreted as UTC.
package record

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/types"
)

// Invoice is the stored form of an invoice.
type Invoice struct {
	ID          string      `json:"id"`
	ClientName  string      `json:"client_name"`
	ClientEmail *string     `json:"client_email"`
	Services    []string    `json:"services"`
	Amount      json.Number `json:"amount"`
	DueDate     Timestamp   `json:"due_date"`
	Status      string      `json:"status"`
	CreatedAt   Timestamp   `json:"created_at"`
	UpdatedAt   *Timestamp  `json:"updated_at,omitempty"`
}

// Payment is the stored form of a payment.
type Payment struct {
	ID            string      `json:"id"`
	InvoiceID     string      `json:"invoice_id"`
	Amount        json.Number `json:"amount"`
	PaymentMethod string      `json:"payment_method,omitempty"`
	RecordedAt    Timestamp   `json:"recorded_at"`
}

// FromInvoice converts inv to its stored form.
func FromInvoice(inv *invoice.Invoice) *Invoice {
	r := &Invoice{
		ID:         inv.ID,
		ClientName: inv.ClientName,
		Services:   inv.Services,
		Amount:     json.Number(inv.Amount.String()),
		DueDate:    Timestamp(inv.DueDate),
		Status:     string(inv.Status),
		CreatedAt:  Timestamp(inv.CreatedAt),
	}
	if inv.ClientEmail != "" {
		email := inv.ClientEmail
		r.ClientEmail = &email
	}
	if inv.UpdatedAt != nil {
		t := Timestamp(*inv.UpdatedAt)
		r.UpdatedAt = &t
	}
	return r
}

// Invoice converts r back to an invoice.
func (r *Invoice) Invoice() (*invoice.Invoice, error) {
	amount, err := decimal.NewFromString(r.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("invoice %s: amount: %w", r.ID, err)
	}

	inv := &invoice.Invoice{
		Entity:     types.Entity{CreatedAt: time.Time(r.CreatedAt)},
		ID:         r.ID,
		ClientName: r.ClientName,
		Services:   r.Services,
		Amount:     amount,
		DueDate:    time.Time(r.DueDate),
		Status:     invoice.Status(r.Status),
	}
	if r.ClientEmail != nil {
		inv.ClientEmail = *r.ClientEmail
	}
	if r.UpdatedAt != nil {
		t := time.Time(*r.UpdatedAt)
		inv.UpdatedAt = &t
	}
	return inv, nil
}

// FromPayment converts p to its stored form.
func FromPayment(p *payment.Payment) *Payment {
	return &Payment{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		Amount:        json.Number(p.Amount.String()),
		PaymentMethod: p.PaymentMethod,
		RecordedAt:    Timestamp(p.RecordedAt),
	}
}

// Payment converts r back to a payment.
func (r *Payment) Payment() (*payment.Payment, error) {
	amount, err := decimal.NewFromString(r.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("payment %s: amount: %w", r.ID, err)
	}
	return &payment.Payment{
		ID:            r.ID,
		InvoiceID:     r.InvoiceID,
		Amount:        amount,
		PaymentMethod: r.PaymentMethod,
		RecordedAt:    time.Time(r.RecordedAt),
	}, nil
}

// ==================== Timestamps ====================

// naiveLayouts are accepted for timestamps without a zone offset. They are
// interpreted as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is a UTC instant encoded as RFC 3339.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("record: timestamp: %w", err)
	}
	parsed, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("record: timestamp: unrecognized format %q", s)
}
