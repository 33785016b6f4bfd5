// Package payment defines the payment record and its storage contract.
package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// MethodUnknown is reported for payments that carry no method.
const MethodUnknown = "unknown"

// Payment is money received against an invoice. Payments are never
// modified after creation.
type Payment struct {
	ID            string          `json:"id"`
	InvoiceID     string          `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	RecordedAt    time.Time       `json:"recorded_at"`
}

// Method returns the payment method, or MethodUnknown when none was given.
func (p *Payment) Method() string {
	if p.PaymentMethod == "" {
		return MethodUnknown
	}
	return p.PaymentMethod
}
