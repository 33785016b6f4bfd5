package billing_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/billing"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/invoice"
)

func TestCreateInvoice(t *testing.T) {
	h := newHarness(t)
	inv := h.createInvoice(t, techCorp())

	prefix, err := id.Parse(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, id.PrefixInvoice, prefix)
	assert.Equal(t, invoice.StatusPending, inv.Status)
	assert.Equal(t, "TechCorp", inv.ClientName)
	assert.Equal(t, []string{"Web Design"}, inv.Services)
	assert.True(t, amount("2000").Equal(inv.Amount))
	assert.Equal(t, base, inv.CreatedAt)
	assert.Nil(t, inv.UpdatedAt)
	assert.Equal(t, base.Add(30*24*time.Hour), inv.DueDate)
}

func TestCreateInvoiceDueDate(t *testing.T) {
	explicit := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	days := 14

	tests := []struct {
		name string
		edit func(*billing.CreateInvoiceInput)
		opts []billing.Option
		want time.Time
	}{
		{"default term", func(*billing.CreateInvoiceInput) {}, nil, base.AddDate(0, 0, 30)},
		{"explicit date", func(in *billing.CreateInvoiceInput) { in.DueDate = &explicit }, nil, explicit},
		{"days", func(in *billing.CreateInvoiceInput) { in.DueInDays = &days }, nil, base.AddDate(0, 0, 14)},
		{"date wins over days", func(in *billing.CreateInvoiceInput) {
			in.DueDate = &explicit
			in.DueInDays = &days
		}, nil, explicit},
		{"custom default", func(*billing.CreateInvoiceInput) {}, []billing.Option{billing.WithDefaultDueIn(7 * 24 * time.Hour)}, base.AddDate(0, 0, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.opts...)
			in := techCorp()
			tt.edit(&in)
			inv := h.createInvoice(t, in)
			assert.Equal(t, tt.want, inv.DueDate)
		})
	}
}

func TestCreateInvoiceValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.CreateInvoice(context.Background(), billing.CreateInvoiceInput{})
	require.Error(t, err)

	var verr *billing.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"client_name", "services", "amount"}, verr.Fields)
	assert.True(t, billing.IsValidation(err))
	assert.ErrorIs(t, err, billing.ErrInvalidInput)
	assert.Contains(t, err.Error(), "client_name, services, amount")

	_, err = h.engine.CreateInvoice(context.Background(), billing.CreateInvoiceInput{
		ClientName: "TechCorp",
		Services:   []string{},
		Amount:     amount("10"),
	})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"services"}, verr.Fields)

	n := 0
	for range h.store.ScanInvoices(context.Background()) {
		n++
	}
	assert.Zero(t, n, "invalid input must not be stored")
}

func TestCreateInvoiceNotifications(t *testing.T) {
	h := newHarness(t)
	inv := h.createInvoice(t, techCorp())

	created := h.rec.kinds("invoice_created")
	require.Len(t, created, 1)
	assert.Equal(t, inv.ID, created[0].Invoice.ID)
	assert.Equal(t, billing.Recipient{Email: "ap@techcorp.test", Name: "TechCorp"}, created[0].To)

	in := techCorp()
	in.ClientEmail = ""
	h.createInvoice(t, in)

	assert.Len(t, h.rec.kinds("invoice_created"), 1, "no email, no notification")
	assert.Len(t, h.rec.kinds("invoice_created_hook"), 2, "hook fires for every invoice")
}

func TestCreateInvoiceNotifierFailureIsolated(t *testing.T) {
	h := newHarness(t)
	h.rec.fail = errors.New("smtp unreachable")

	inv := h.createInvoice(t, techCorp())
	assert.Equal(t, invoice.StatusPending, inv.Status)
}

// panicking fails every invoice notification with a panic.
type panicking struct{}

func (panicking) Name() string { return "panicking" }

func (panicking) NotifyInvoiceCreated(context.Context, *invoice.Invoice, billing.Recipient) error {
	panic("smtp client nil")
}

func TestCreateInvoiceNotifierPanicIsolated(t *testing.T) {
	h := newHarness(t, billing.WithPlugin(panicking{}))

	var inv *invoice.Invoice
	require.NotPanics(t, func() { inv = h.createInvoice(t, techCorp()) })
	assert.Equal(t, invoice.StatusPending, inv.Status)
	assert.Len(t, h.rec.kinds("invoice_created"), 1, "later notifiers still run")
}

func TestCreateInvoiceLegacyIDs(t *testing.T) {
	h := newHarness(t, billing.WithIDGenerator(id.TimestampGenerator{}))
	inv := h.createInvoice(t, techCorp())
	assert.Equal(t, "INV-20240115-103000", inv.ID)
}

func TestCreateInvoiceStorageError(t *testing.T) {
	e := billing.New(brokenStore{}, billing.WithPlugin(&recorder{}))

	_, err := e.CreateInvoice(context.Background(), techCorp())
	require.Error(t, err)

	var serr *billing.StorageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "create", serr.Op)
	assert.Equal(t, "invoice", serr.Kind)
	assert.True(t, strings.HasPrefix(serr.ID, "inv_"))
	assert.ErrorIs(t, err, errStoreDown)
	assert.True(t, billing.IsStorage(err))
}

func TestGetInvoiceIdempotent(t *testing.T) {
	h := newHarness(t)
	inv := h.createInvoice(t, techCorp())

	first, _, err := h.engine.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	second, _, err := h.engine.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	missing, found, err := h.engine.GetInvoice(context.Background(), "inv_missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, missing)
}

func TestUpdateStatusMissing(t *testing.T) {
	h := newHarness(t)

	ok, err := h.engine.UpdateStatus(context.Background(), "inv_missing", invoice.StatusPaid)
	require.NoError(t, err)
	assert.False(t, ok)

	_, found, err := h.store.GetInvoice(context.Background(), "inv_missing")
	require.NoError(t, err)
	assert.False(t, found, "no write for missing invoice")
	assert.Empty(t, h.rec.kinds("status_changed"))
}

func TestUpdateStatusEmpty(t *testing.T) {
	h := newHarness(t)
	inv := h.createInvoice(t, techCorp())

	_, err := h.engine.UpdateStatus(context.Background(), inv.ID, "")
	assert.True(t, billing.IsValidation(err))
}

func TestUpdateStatus(t *testing.T) {
	h := newHarness(t)
	inv := h.createInvoice(t, techCorp())

	h.clock.Advance(time.Hour)
	ok, err := h.engine.UpdateStatus(context.Background(), inv.ID, invoice.StatusReminderSent)
	require.NoError(t, err)
	require.True(t, ok)

	got, _, err := h.engine.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusReminderSent, got.Status)
	require.NotNil(t, got.UpdatedAt)
	assert.Equal(t, base.Add(time.Hour), *got.UpdatedAt)

	changed := h.rec.kinds("status_changed")
	require.Len(t, changed, 1)
	assert.Equal(t, invoice.StatusPending, changed[0].Previous)
	assert.Empty(t, h.rec.kinds("reminder_due"))
}

func TestUpdateStatusOverdueSendsReminder(t *testing.T) {
	h := newHarness(t)
	inv := h.createInvoice(t, techCorp())

	// 45 days and a few hours past the due date
	h.clock.Advance(75*24*time.Hour + 5*time.Hour)
	ok, err := h.engine.UpdateStatus(context.Background(), inv.ID, invoice.StatusOverdue)
	require.NoError(t, err)
	require.True(t, ok)

	reminders := h.rec.kinds("reminder_due")
	require.Len(t, reminders, 1)
	assert.Equal(t, 45, reminders[0].DaysOverdue)
	assert.Equal(t, "ap@techcorp.test", reminders[0].To.Email)
}

func TestUpdateStatusOverdueBeforeDueDate(t *testing.T) {
	h := newHarness(t)
	inv := h.createInvoice(t, techCorp())

	h.clock.Advance(10 * 24 * time.Hour)
	_, err := h.engine.UpdateStatus(context.Background(), inv.ID, invoice.StatusOverdue)
	require.NoError(t, err)

	reminders := h.rec.kinds("reminder_due")
	require.Len(t, reminders, 1)
	assert.Equal(t, -20, reminders[0].DaysOverdue)
}

func TestUpdateStatusOverdueWithoutEmail(t *testing.T) {
	h := newHarness(t)
	in := techCorp()
	in.ClientEmail = ""
	inv := h.createInvoice(t, in)

	_, err := h.engine.UpdateStatus(context.Background(), inv.ID, invoice.StatusOverdue)
	require.NoError(t, err)
	assert.Empty(t, h.rec.kinds("reminder_due"))
}

func TestListOverdueAndMarkOverdue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	late := h.createInvoice(t, techCorp())

	paidIn := techCorp()
	paidIn.ClientName = "Paid Co"
	paid := h.createInvoice(t, paidIn)
	_, err := h.engine.UpdateStatus(ctx, paid.ID, invoice.StatusPaid)
	require.NoError(t, err)

	days := 90
	laterIn := techCorp()
	laterIn.ClientName = "Later Co"
	laterIn.DueInDays = &days
	later := h.createInvoice(t, laterIn)

	h.clock.Advance(31 * 24 * time.Hour)

	overdue, err := h.engine.ListOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)

	marked, err := h.engine.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	got, _, err := h.engine.GetInvoice(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusOverdue, got.Status)

	stillPending, _, err := h.engine.GetInvoice(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPending, stillPending.Status)

	// overdue invoices are not listed again
	overdue, err = h.engine.ListOverdue(ctx)
	require.NoError(t, err)
	assert.Empty(t, overdue)
	assert.Len(t, h.rec.kinds("reminder_due"), 1)
}
