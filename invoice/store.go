package invoice

import (
	"context"
	"iter"
)

// Store persists invoices, one record per ID.
type Store interface {
	// PutInvoice writes the whole record, replacing any record with the same ID.
	PutInvoice(ctx context.Context, inv *Invoice) error

	// GetInvoice returns the record with the given ID. A missing record
	// yields (nil, false, nil).
	GetInvoice(ctx context.Context, invID string) (*Invoice, bool, error)

	// ScanInvoices lazily yields every stored invoice in unspecified order.
	// Iteration stops at the first error, which is yielded with a nil record.
	ScanInvoices(ctx context.Context) iter.Seq2[*Invoice, error]
}
