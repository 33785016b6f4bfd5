package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/billing/id"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/types"
)

// CreateInvoiceInput holds the fields of a new invoice. client_name,
// services and amount are required.
type CreateInvoiceInput struct {
	ClientName  string           `json:"client_name"            validate:"required"`
	ClientEmail string           `json:"client_email,omitempty"`
	Services    []string         `json:"services"               validate:"required,min=1"`
	Amount      *decimal.Decimal `json:"amount"                 validate:"required"`

	// DueDate wins over DueInDays. With neither set the engine's default
	// term applies.
	DueDate   *time.Time `json:"due_date,omitempty"`
	DueInDays *int       `json:"due_in_days,omitempty"`
}

// CreateInvoice validates in, persists a pending invoice and returns its ID.
func (e *Engine) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (string, error) {
	if err := e.validateInput(in); err != nil {
		return "", err
	}

	now := e.now()
	invID, err := e.ids.Generate(id.PrefixInvoice, now)
	if err != nil {
		return "", err
	}

	due := now.Add(e.dueIn)
	switch {
	case in.DueDate != nil:
		due = *in.DueDate
	case in.DueInDays != nil:
		due = now.Add(time.Duration(*in.DueInDays) * 24 * time.Hour)
	}

	inv := &invoice.Invoice{
		Entity:      types.NewEntity(now),
		ID:          invID,
		ClientName:  in.ClientName,
		ClientEmail: in.ClientEmail,
		Services:    in.Services,
		Amount:      *in.Amount,
		DueDate:     due.UTC(),
		Status:      invoice.StatusPending,
	}

	if err := e.store.PutInvoice(ctx, inv); err != nil {
		return "", storageErr("create", "invoice", invID, err)
	}

	e.logger.Info("invoice created",
		"invoice_id", inv.ID,
		"client", inv.ClientName,
		"amount", inv.Amount.String(),
		"due_date", inv.DueDate,
	)

	e.plugins.EmitInvoiceCreated(ctx, inv)
	if to, ok := inv.Recipient(); ok {
		e.plugins.NotifyInvoiceCreated(ctx, inv, to)
	}

	return inv.ID, nil
}

// GetInvoice returns the invoice with the given ID. The boolean is false
// when no such invoice exists.
func (e *Engine) GetInvoice(ctx context.Context, invoiceID string) (*invoice.Invoice, bool, error) {
	inv, found, err := e.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, false, storageErr("get", "invoice", invoiceID, err)
	}
	return inv, found, nil
}

// UpdateStatus sets the status of an invoice. It returns false, performing
// no write, when the invoice does not exist. Moving an invoice with a
// client email to overdue sends a payment reminder.
func (e *Engine) UpdateStatus(ctx context.Context, invoiceID string, status invoice.Status) (bool, error) {
	if status == "" {
		return false, &ValidationError{Fields: []string{"status"}, Message: "missing required field(s)"}
	}

	inv, found, err := e.GetInvoice(ctx, invoiceID)
	if err != nil || !found {
		return false, err
	}

	now := e.now()
	previous := inv.Status
	inv.Status = status
	inv.Touch(now)

	if err := e.store.PutInvoice(ctx, inv); err != nil {
		return false, storageErr("update", "invoice", invoiceID, err)
	}

	e.logger.Info("invoice status updated",
		"invoice_id", invoiceID,
		"from", previous,
		"to", status,
	)

	e.plugins.EmitInvoiceStatusChanged(ctx, inv, previous)
	if status == invoice.StatusOverdue {
		if to, ok := inv.Recipient(); ok {
			e.plugins.NotifyReminderDue(ctx, inv, to, inv.DaysOverdue(now))
		}
	}

	return true, nil
}

// ListOverdue returns pending invoices whose due date has passed. Invoices
// already moved to overdue or reminder_sent are not included.
func (e *Engine) ListOverdue(ctx context.Context) ([]*invoice.Invoice, error) {
	now := e.now()

	var out []*invoice.Invoice
	for inv, err := range e.store.ScanInvoices(ctx) {
		if err != nil {
			return nil, storageErr("scan", "invoice", "", err)
		}
		if inv.IsOverdue(now) {
			out = append(out, inv)
		}
	}
	return out, nil
}

// MarkOverdue moves every invoice returned by ListOverdue to overdue and
// returns how many were updated. Failures on individual invoices do not stop
// the sweep; they are returned together as a MultiError.
func (e *Engine) MarkOverdue(ctx context.Context) (int, error) {
	overdue, err := e.ListOverdue(ctx)
	if err != nil {
		return 0, err
	}

	var (
		marked int
		errs   MultiError
	)
	for _, inv := range overdue {
		ok, err := e.UpdateStatus(ctx, inv.ID, invoice.StatusOverdue)
		if err != nil {
			errs.Add(err)
			continue
		}
		if ok {
			marked++
		}
	}

	e.logger.Info("overdue sweep finished", "candidates", len(overdue), "marked", marked)
	return marked, errs.ErrorOrNil()
}
