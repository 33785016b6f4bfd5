package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xraph/grove"

	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/types"
)

// Amounts are stored as decimal strings so no precision is lost.

// ==================== Invoice models ====================

type invoiceModel struct {
	grove.BaseModel `grove:"table:billing_invoices"`

	ID          string     `grove:"id,pk"        bson:"_id"`
	ClientName  string     `grove:"client_name"  bson:"client_name"`
	ClientEmail string     `grove:"client_email" bson:"client_email,omitempty"`
	Services    []string   `grove:"services"     bson:"services"`
	Amount      string     `grove:"amount"       bson:"amount"`
	DueDate     time.Time  `grove:"due_date"     bson:"due_date"`
	Status      string     `grove:"status"       bson:"status"`
	CreatedAt   time.Time  `grove:"created_at"   bson:"created_at"`
	UpdatedAt   *time.Time `grove:"updated_at"   bson:"updated_at,omitempty"`
}

func toInvoiceModel(inv *invoice.Invoice) *invoiceModel {
	return &invoiceModel{
		ID:          inv.ID,
		ClientName:  inv.ClientName,
		ClientEmail: inv.ClientEmail,
		Services:    inv.Services,
		Amount:      inv.Amount.String(),
		DueDate:     inv.DueDate,
		Status:      string(inv.Status),
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
	}
}

func fromInvoiceModel(m *invoiceModel) (*invoice.Invoice, error) {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return nil, fmt.Errorf("invoice %s: amount: %w", m.ID, err)
	}

	var updated *time.Time
	if m.UpdatedAt != nil {
		t := m.UpdatedAt.UTC()
		updated = &t
	}

	return &invoice.Invoice{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt.UTC(),
			UpdatedAt: updated,
		},
		ID:          m.ID,
		ClientName:  m.ClientName,
		ClientEmail: m.ClientEmail,
		Services:    m.Services,
		Amount:      amount,
		DueDate:     m.DueDate.UTC(),
		Status:      invoice.Status(m.Status),
	}, nil
}

// ==================== Payment models ====================

type paymentModel struct {
	grove.BaseModel `grove:"table:billing_payments"`

	ID            string    `grove:"id,pk"          bson:"_id"`
	InvoiceID     string    `grove:"invoice_id"     bson:"invoice_id"`
	Amount        string    `grove:"amount"         bson:"amount"`
	PaymentMethod string    `grove:"payment_method" bson:"payment_method,omitempty"`
	RecordedAt    time.Time `grove:"recorded_at"    bson:"recorded_at"`
}

func toPaymentModel(p *payment.Payment) *paymentModel {
	return &paymentModel{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		Amount:        p.Amount.String(),
		PaymentMethod: p.PaymentMethod,
		RecordedAt:    p.RecordedAt,
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
