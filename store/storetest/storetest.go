// Package storetest provides a conformance suite run against every
// store.Store backend.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/store"
	"github.com/xraph/billing/types"
)

// Factory returns a fresh, migrated, empty store.
type Factory func(t *testing.T) store.Store

// Run executes the conformance suite.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("invoice round trip", func(t *testing.T) { testInvoiceRoundTrip(t, newStore(t)) })
	t.Run("missing invoice", func(t *testing.T) { testMissingInvoice(t, newStore(t)) })
	t.Run("invoice overwrite", func(t *testing.T) { testInvoiceOverwrite(t, newStore(t)) })
	t.Run("scan invoices", func(t *testing.T) { testScanInvoices(t, newStore(t)) })
	t.Run("payment round trip", func(t *testing.T) { testPaymentRoundTrip(t, newStore(t)) })
	t.Run("missing payment", func(t *testing.T) { testMissingPayment(t, newStore(t)) })
	t.Run("scan payments", func(t *testing.T) { testScanPayments(t, newStore(t)) })
	t.Run("scan stops early", func(t *testing.T) { testScanStopsEarly(t, newStore(t)) })
}

var base = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// SampleInvoice returns a fully populated pending invoice.
func SampleInvoice(invID string) *invoice.Invoice {
	return &invoice.Invoice{
		Entity:      types.NewEntity(base),
		ID:          invID,
		ClientName:  "Acme Corp",
		ClientEmail: "billing@acme.test",
		Services:    []string{"Web Design", "Hosting"},
		Amount:      decimal.RequireFromString("1500.25"),
		DueDate:     base.AddDate(0, 0, 30),
		Status:      invoice.StatusPending,
	}
}

// SamplePayment returns a payment against invID.
func SamplePayment(payID, invID string) *payment.Payment {
	return &payment.Payment{
		ID:            payID,
		InvoiceID:     invID,
		Amount:        decimal.RequireFromString("1500.25"),
		PaymentMethod: "credit_card",
		RecordedAt:    base.Add(time.Hour),
	}
}

// AssertInvoiceEqual compares invoices field by field, using instant and
// decimal equality rather than representation.
func AssertInvoiceEqual(t *testing.T, want, got *invoice.Invoice) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.ClientName, got.ClientName)
	assert.Equal(t, want.ClientEmail, got.ClientEmail)
	assert.Equal(t, want.Services, got.Services)
	assert.True(t, want.Amount.Equal(got.Amount), "amount: want %s, got %s", want.Amount, got.Amount)
	assert.True(t, want.DueDate.Equal(got.DueDate), "due_date: want %s, got %s", want.DueDate, got.DueDate)
	assert.Equal(t, want.Status, got.Status)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at: want %s, got %s", want.CreatedAt, got.CreatedAt)
	if want.UpdatedAt == nil {
		assert.Nil(t, got.UpdatedAt)
	} else if assert.NotNil(t, got.UpdatedAt) {
		assert.True(t, want.UpdatedAt.Equal(*got.UpdatedAt))
	}
}

// AssertPaymentEqual compares payments field by field.
func AssertPaymentEqual(t *testing.T, want, got *payment.Payment) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.InvoiceID, got.InvoiceID)
	assert.True(t, want.Amount.Equal(got.Amount), "amount: want %s, got %s", want.Amount, got.Amount)
	assert.Equal(t, want.PaymentMethod, got.PaymentMethod)
	assert.True(t, want.RecordedAt.Equal(got.RecordedAt))
}

func testInvoiceRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	inv := SampleInvoice("inv_roundtrip")

	require.NoError(t, s.PutInvoice(ctx, inv))

	got, ok, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, ok)
	AssertInvoiceEqual(t, inv, got)
}

func testMissingInvoice(t *testing.T, s store.Store) {
	got, ok, err := s.GetInvoice(context.Background(), "inv_missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func testInvoiceOverwrite(t *testing.T, s store.Store) {
	ctx := context.Background()
	inv := SampleInvoice("inv_overwrite")
	require.NoError(t, s.PutInvoice(ctx, inv))

	updated := SampleInvoice("inv_overwrite")
	updated.Status = invoice.StatusPaid
	updated.Touch(base.Add(2 * time.Hour))
	require.NoError(t, s.PutInvoice(ctx, updated))

	got, ok, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, ok)
	AssertInvoiceEqual(t, updated, got)

	count := 0
	for _, err := range s.ScanInvoices(ctx) {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 1, count)
}

func testScanInvoices(t *testing.T, s store.Store) {
	ctx := context.Background()
	want := map[string]bool{"inv_a": true, "inv_b": true, "inv_c": true}
	for invID := range want {
		require.NoError(t, s.PutInvoice(ctx, SampleInvoice(invID)))
	}

	got := make(map[string]bool)
	for inv, err := range s.ScanInvoices(ctx) {
		require.NoError(t, err)
		got[inv.ID] = true
	}
	assert.Equal(t, want, got)
}

func testPaymentRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := SamplePayment("pay_roundtrip", "inv_roundtrip")

	require.NoError(t, s.PutPayment(ctx, p))

	got, ok, err := s.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, ok)
	AssertPaymentEqual(t, p, got)
}

func testMissingPayment(t *testing.T, s store.Store) {
	got, ok, err := s.GetPayment(context.Background(), "pay_missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func testScanPayments(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.PutPayment(ctx, SamplePayment("pay_a", "inv_a")))
	require.NoError(t, s.PutPayment(ctx, SamplePayment("pay_b", "inv_a")))

	got := make(map[string]bool)
	for p, err := range s.ScanPayments(ctx) {
		require.NoError(t, err)
		got[p.ID] = true
	}
	assert.Equal(t, map[string]bool{"pay_a": true, "pay_b": true}, got)
}

func testScanStopsEarly(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, invID := range []string{"inv_1", "inv_2", "inv_3"} {
		require.NoError(t, s.PutInvoice(ctx, SampleInvoice(invID)))
	}

	seen := 0
	for _, err := range s.ScanInvoices(ctx) {
		require.NoError(t, err)
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}
