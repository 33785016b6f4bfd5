// Package redis provides a store.Store backed by Redis. Each record is a
// JSON string value under "<prefix>:<kind>:<id>", in the same document shape
// the file store writes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/redis/go-redis/v9"

	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/store"
	"github.com/xraph/billing/store/record"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// DefaultPrefix namespaces keys when no prefix is configured.
const DefaultPrefix = "billing"

const (
	kindInvoice = "invoice"
	kindPayment = "payment"
	scanCount   = 500
)

// Store implements store.Store on a Redis keyspace.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New creates a Redis store using client.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate is a no-op; Redis needs no schema.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping checks server connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("billing/redis: ping: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// ==================== Invoice Store ====================

func (s *Store) PutInvoice(ctx context.Context, inv *invoice.Invoice) error {
	if err := s.put(ctx, kindInvoice, inv.ID, record.FromInvoice(inv)); err != nil {
		return fmt.Errorf("billing/redis: put invoice %s: %w", inv.ID, err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, invID string) (*invoice.Invoice, bool, error) {
	var r record.Invoice
	found, err := s.get(ctx, s.key(kindInvoice, invID), &r)
	if err != nil {
		return nil, false, fmt.Errorf("billing/redis: get invoice %s: %w", invID, err)
	}
	if !found {
		return nil, false, nil
	}
	inv, err := r.Invoice()
	if err != nil {
		return nil, false, fmt.Errorf("billing/redis: get invoice %s: %w", invID, err)
	}
	return inv, true, nil
}

func (s *Store) ScanInvoices(ctx context.Context) iter.Seq2[*invoice.Invoice, error] {
	return func(yield func(*invoice.Invoice, error) bool) {
		for key, err := range s.keys(ctx, kindInvoice) {
			if err != nil {
				yield(nil, fmt.Errorf("billing/redis: scan invoices: %w", err))
				return
			}

			var r record.Invoice
			found, err := s.get(ctx, key, &r)
			if err != nil {
				yield(nil, fmt.Errorf("billing/redis: scan invoices: %w", err))
				return
			}
			if !found {
				continue
			}
			inv, err := r.Invoice()
			if err != nil {
				yield(nil, fmt.Errorf("billing/redis: scan invoices: %w", err))
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
	if err := s.put(ctx, kindPayment, p.ID, record.FromPayment(p)); err != nil {
		return fmt.Errorf("billing/redis: put payment %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, payID string) (*payment.Payment, bool, error) {
	var r record.Payment
	found, err := s.get(ctx, s.key(kindPayment, payID), &r)
	if err != nil {
		return nil, false, fmt.Errorf("billing/redis: get payment %s: %w", payID, err)
	}
	if !found {
		return nil, false, nil
	}
	p, err := r.Payment()
	if err != nil {
		return nil, false, fmt.Errorf("billing/redis: get payment %s: %w", payID, err)
	}
	return p, true, nil
}

func (s *Store) ScanPayments(ctx context.Context) iter.Seq2[*payment.Payment, error] {
	return func(yield func(*payment.Payment, error) bool) {
		for key, err := range s.keys(ctx, kindPayment) {
			if err != nil {
				yield(nil, fmt.Errorf("billing/redis: scan payments: %w", err))
				return
			}

			var r record.Payment
			found, err := s.get(ctx, key, &r)
			if err != nil {
				yield(nil, fmt.Errorf("billing/redis: scan payments: %w", err))
				return
			}
			if !found {
				continue
			}
			p, err := r.Payment()
			if err != nil {
				yield(nil, fmt.Errorf("billing/redis: scan payments: %w", err))
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

// ==================== Helpers ====================

func (s *Store) key(kind, recordID string) string {
	return s.prefix + ":" + kind + ":" + recordID
}

func (s *Store) put(ctx context.Context, kind, recordID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(kind, recordID), data, 0).Err()
}

func (s *Store) get(ctx context.Context, key string, v any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// keys walks the keyspace of one record kind with SCAN, so the server is
// never blocked by a full KEYS listing.
func (s *Store) keys(ctx context.Context, kind string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		it := s.client.Scan(ctx, 0, s.key(kind, "*"), scanCount).Iterator()
		for it.Next(ctx) {
			if !yield(it.Val(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield("", err)
		}
	}
}
