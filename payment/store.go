package payment

import (
	"context"
	"iter"
)

// Store persists payments, one record per ID.
type Store interface {
	// PutPayment writes the whole record, replacing any record with the same ID.
	PutPayment(ctx context.Context, p *Payment) error

	// GetPayment returns the record with the given ID. A missing record
	// yields (nil, false, nil).
	GetPayment(ctx context.Context, payID string) (*Payment, bool, error)

	// ScanPayments lazily yields every stored payment in unspecified order.
	// Iteration stops at the first error, which is yielded with a nil record.
	ScanPayments(ctx context.Context) iter.Seq2[*Payment, error]
}
