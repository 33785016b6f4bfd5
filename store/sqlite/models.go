package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xraph/grove"

	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/types"
)

// ==================== Invoice models ====================

type invoiceModel struct {
	grove.BaseModel `grove:"table:billing_invoices"`

	ID          string     `grove:"id,pk"`
	ClientName  string     `grove:"client_name"`
	ClientEmail string     `grove:"client_email"`
	Services    string     `grove:"services"`
	Amount      string     `grove:"amount"`
	DueDate     time.Time  `grove:"due_date"`
	Status      string     `grove:"status"`
	CreatedAt   time.Time  `grove:"created_at"`
	UpdatedAt   *time.Time `grove:"updated_at"`
}

func toInvoiceModel(inv *invoice.Invoice) (*invoiceModel, error) {
	services, err := json.Marshal(inv.Services)
	if err != nil {
		return nil, fmt.Errorf("encode services: %w", err)
	}

	return &invoiceModel{
		ID:          inv.ID,
		ClientName:  inv.ClientName,
		ClientEmail: inv.ClientEmail,
		Services:    string(services),
		Amount:      inv.Amount.String(),
		DueDate:     inv.DueDate.UTC(),
		Status:      string(inv.Status),
		CreatedAt:   inv.CreatedAt.UTC(),
		UpdatedAt:   utcPtr(inv.UpdatedAt),
	}, nil
}

func fromInvoiceModel(m *invoiceModel) (*invoice.Invoice, error) {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return nil, fmt.Errorf("invoice %s: amount: %w", m.ID, err)
	}

	var services []string
	if m.Services != "" {
		if err := json.Unmarshal([]byte(m.Services), &services); err != nil {
			return nil, fmt.Errorf("invoice %s: services: %w", m.ID, err)
		}
	}

	return &invoice.Invoice{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt.UTC(),
			UpdatedAt: utcPtr(m.UpdatedAt),
		},
		ID:          m.ID,
		ClientName:  m.ClientName,
		ClientEmail: m.ClientEmail,
		Services:    services,
		Amount:      amount,
		DueDate:     m.DueDate.UTC(),
		Status:      invoice.Status(m.Status),
	}, nil
}

// ==================== Payment models ====================

type paymentModel struct {
	grove.BaseModel `grove:"table:billing_payments"`

	ID            string    `grove:"id,pk"`
	InvoiceID     string    `grove:"invoice_id"`
	Amount        string    `grove:"amount"`
	PaymentMethod string    `grove:"payment_method"`
	RecordedAt    time.Time `grove:"recorded_at"`
}

func toPaymentModel(p *payment.Payment) *paymentModel {
	return &paymentModel{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		Amount:        p.Amount.String(),
		PaymentMethod: p.PaymentMethod,
		RecordedAt:    p.RecordedAt.UTC(),
	}
}

func fromPaymentModel(m *paymentModel) (*payment.Payment, error) {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return nil, fmt.Errorf("payment %s: amount: %w", m.ID, err)
	}
	return &payment.Payment{
		ID:            m.ID,
		InvoiceID:     m.InvoiceID,
		Amount:        amount,
		PaymentMethod: m.PaymentMethod,
		RecordedAt:    m.RecordedAt.UTC(),
	}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
