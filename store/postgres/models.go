package postgres

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

	ID          string          `grove:"id,pk"`
	ClientName  string          `grove:"client_name"`
	ClientEmail string          `grove:"client_email"`
	Services    json.RawMessage `grove:"services,type:jsonb"`
	Amount      decimal.Decimal `grove:"amount,type:numeric"`
	DueDate     time.Time       `grove:"due_date"`
	Status      string          `grove:"status"`
	CreatedAt   time.Time       `grove:"created_at"`
	UpdatedAt   *time.Time      `grove:"updated_at"`
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
		Services:    services,
		Amount:      inv.Amount,
		DueDate:     inv.DueDate,
		Status:      string(inv.Status),
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
	}, nil
}

func fromInvoiceModel(m *invoiceModel) (*invoice.Invoice, error) {
	var services []string
	if len(m.Services) > 0 {
		if err := json.Unmarshal(m.Services, &services); err != nil {
			return nil, fmt.Errorf("invoice %s: services: %w", m.ID, err)
		}
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
		Services:    services,
		Amount:      m.Amount,
		DueDate:     m.DueDate.UTC(),
		Status:      invoice.Status(m.Status),
	}, nil
}

// ==================== Payment models ====================

type paymentModel struct {
	grove.BaseModel `grove:"table:billing_payments"`

	ID            string          `grove:"id,pk"`
	InvoiceID     string          `grove:"invoice_id"`
	Amount        decimal.Decimal `grove:"amount,type:numeric"`
	PaymentMethod string          `grove:"payment_method"`
	RecordedAt    time.Time       `grove:"recorded_at"`
}

func toPaymentModel(p *payment.Payment) *paymentModel {
	return &paymentModel{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		RecordedAt:    p.RecordedAt,
	}
}

func fromPaymentModel(m *paymentModel) *payment.Payment {
	return &payment.Payment{
		ID:            m.ID,
		InvoiceID:     m.InvoiceID,
		Amount:        m.Amount,
		PaymentMethod: m.PaymentMethod,
		RecordedAt:    m.RecordedAt.UTC(),
	}
}
