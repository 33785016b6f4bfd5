// Package mongo provides a store.Store backed by MongoDB via Grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	billingstore "github.com/xraph/billing/store"
)

// Collection name constants.
const (
	colInvoices = "billing_invoices"
	colPayments = "billing_payments"
)

// scanBatchSize is the cursor batch size used by scans.
const scanBatchSize = 500

// compile-time interface check
var _ billingstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all billing collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("billing/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Invoice Store ====================

// PutInvoice replaces the document by _id and inserts it when nothing matched.
func (s *Store) PutInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("billing/mongo: put invoice %s: %w", inv.ID, err)
	}
	if res.MatchedCount() > 0 {
		return nil
	}

	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("billing/mongo: put invoice %s: %w", inv.ID, err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, invID string) (*invoice.Invoice, bool, error) {
	var m invoiceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": invID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("billing/mongo: get invoice %s: %w", invID, err)
	}

	inv, err := fromInvoiceModel(&m)
	if err != nil {
		return nil, false, fmt.Errorf("billing/mongo: get invoice: %w", err)
	}
	return inv, true, nil
}

// ScanInvoices streams the collection through a driver cursor.
func (s *Store) ScanInvoices(ctx context.Context) iter.Seq2[*invoice.Invoice, error] {
	return func(yield func(*invoice.Invoice, error) bool) {
		for raw, err := range s.scan(ctx, colInvoices) {
			if err != nil {
				yield(nil, fmt.Errorf("billing/mongo: scan invoices: %w", err))
				return
			}

			var m invoiceModel
			if err := raw(&m); err != nil {
				yield(nil, fmt.Errorf("billing/mongo: scan invoices: %w", err))
				return
			}
			inv, err := fromInvoiceModel(&m)
			if err != nil {
				yield(nil, fmt.Errorf("billing/mongo: scan invoices: %w", err))
				return
			}
			if !yield(inv, nil) {
				return
			}
		}
	}
}

// ==================== Payment Store ====================

func (s *Store) PutPayment(ctx context.Context, p *payment.Payment) error {
	m := toPaymentModel(p)

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("billing/mongo: put payment %s: %w", p.ID, err)
	}
	if res.MatchedCount() > 0 {
		return nil
	}

	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("billing/mongo: put payment %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, payID string) (*payment.Payment, bool, error) {
	var m paymentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": payID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("billing/mongo: get payment %s: %w", payID, err)
	}

	p, err := fromPaymentModel(&m)
	if err != nil {
		return nil, false, fmt.Errorf("billing/mongo: get payment: %w", err)
	}
	return p, true, nil
}

func (s *Store) ScanPayments(ctx context.Context) iter.Seq2[*payment.Payment, error] {
	return func(yield func(*payment.Payment, error) bool) {
		for raw, err := range s.scan(ctx, colPayments) {
			if err != nil {
				yield(nil, fmt.Errorf("billing/mongo: scan payments: %w", err))
				return
			}

			var m paymentModel
			if err := raw(&m); err != nil {
				yield(nil, fmt.Errorf("billing/mongo: scan payments: %w", err))
				return
			}
			p, err := fromPaymentModel(&m)
			if err != nil {
				yield(nil, fmt.Errorf("billing/mongo: scan payments: %w", err))
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

// ==================== Helpers ====================

// decodeFunc decodes the cursor's current document.
type decodeFunc func(v any) error

// scan iterates over every document of a collection. The cursor is closed
// when iteration ends, including on early break.
func (s *Store) scan(ctx context.Context, col string) iter.Seq2[decodeFunc, error] {
	return func(yield func(decodeFunc, error) bool) {
		cur, err := s.mdb.Collection(col).Find(ctx, bson.M{},
			options.Find().SetBatchSize(scanBatchSize))
		if err != nil {
			yield(nil, err)
			return
		}
		defer cur.Close(ctx) //nolint:errcheck // best-effort cursor cleanup

		for cur.Next(ctx) {
			if !yield(cur.Decode, nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all billing collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colInvoices: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "due_date", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "client_name", Value: 1}}},
		},
		colPayments: {
			{Keys: bson.D{{Key: "invoice_id", Value: 1}}},
			{Keys: bson.D{{Key: "recorded_at", Value: -1}}},
		},
	}
}
