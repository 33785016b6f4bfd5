package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xraph/billing/id"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
)

// RecordPaymentInput holds the fields of a new payment. All are required.
type RecordPaymentInput struct {
	InvoiceID     string           `json:"invoice_id"     validate:"required"`
	Amount        *decimal.Decimal `json:"amount"         validate:"required"`
	PaymentMethod string           `json:"payment_method" validate:"required"`
}

// RecordPayment persists a payment and returns its ID.
//
// A payment covering the full invoice amount settles the invoice: its status
// becomes paid and, when the client has an email, a confirmation is sent.
// Partial payments are stored but neither settle the invoice nor add up
// toward its amount. A payment referencing an unknown invoice is stored and
// settlement is skipped.
func (e *Engine) RecordPayment(ctx context.Context, in RecordPaymentInput) (string, error) {
	if err := e.validateInput(in); err != nil {
		return "", err
	}

	now := e.now()
	payID, err := e.ids.Generate(id.PrefixPayment, now)
	if err != nil {
		return "", err
	}

	p := &payment.Payment{
		ID:            payID,
		InvoiceID:     in.InvoiceID,
		Amount:        *in.Amount,
		PaymentMethod: in.PaymentMethod,
		RecordedAt:    now.UTC(),
	}

	if err := e.store.PutPayment(ctx, p); err != nil {
		return "", storageErr("create", "payment", payID, err)
	}

	e.logger.Info("payment recorded",
		"payment_id", p.ID,
		"invoice_id", p.InvoiceID,
		"amount", p.Amount.String(),
		"method", p.PaymentMethod,
	)
	e.plugins.EmitPaymentRecorded(ctx, p)

	// The payment is stored even when settlement fails.
	if err := e.settle(ctx, p); err != nil {
		return p.ID, err
	}
	return p.ID, nil
}

// settle marks the referenced invoice paid when p covers its amount.
func (e *Engine) settle(ctx context.Context, p *payment.Payment) error {
	inv, found, err := e.GetInvoice(ctx, p.InvoiceID)
	if err != nil {
		return err
	}
	if !found {
		e.logger.Debug("payment references unknown invoice, settlement skipped",
			"payment_id", p.ID,
			"invoice_id", p.InvoiceID,
		)
		return nil
	}
	if p.Amount.LessThan(inv.Amount) {
		return nil
	}

	if _, err := e.UpdateStatus(ctx, inv.ID, invoice.StatusPaid); err != nil {
		return err
	}
	inv.Status = invoice.StatusPaid

	if to, ok := inv.Recipient(); ok {
		e.plugins.NotifyPaymentConfirmed(ctx, p, inv, to)
	}
	return nil
}

// GetPayment returns the payment with the given ID. The boolean is false
// when no such payment exists.
func (e *Engine) GetPayment(ctx context.Context, paymentID string) (*payment.Payment, bool, error) {
	p, found, err := e.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, false, storageErr("get", "payment", paymentID, err)
	}
	return p, found, nil
}
