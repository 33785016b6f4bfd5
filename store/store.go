// Package store defines the unified record store used by the billing engine.
package store

import (
	"context"

	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
)

// Store is the unified storage interface for all billing records.
// Each record is an individually addressable unit; there is no batching
// and no transactional grouping across records.
type Store interface {
	invoice.Store
	payment.Store

	// Migrate prepares the backend (tables, indexes, directories).
	Migrate(ctx context.Context) error
	// Ping checks backend connectivity.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}
