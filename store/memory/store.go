// Package memory provides an in-process store.Store backed by maps.
package memory

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store keeps records in memory. Records are copied on the way in and out
// so callers never share state with the store.
type Store struct {
	mu sync.RWMutex

	invoices map[string]*invoice.Invoice
	payments map[string]*payment.Payment
}

// New creates an empty memory store.
func New() *Store {
	return &Store{
		invoices: make(map[string]*invoice.Invoice),
		payments: make(map[string]*payment.Payment),
	}
}

// Migrate is a no-op.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

// ==================== Invoice Store ====================

func (s *Store) PutInvoice(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (s *Store) GetInvoice(_ context.Context, invID string) (*invoice.Invoice, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if inv, ok := s.invoices[invID]; ok {
		return cloneInvoice(inv), true, nil
	}
	return nil, false, nil
}

func (s *Store) ScanInvoices(ctx context.Context) iter.Seq2[*invoice.Invoice, error] {
	return func(yield func(*invoice.Invoice, error) bool) {
		s.mu.RLock()
		snapshot := make([]*invoice.Invoice, 0, len(s.invoices))
		for _, inv := range s.invoices {
			snapshot = append(snapshot, cloneInvoice(inv))
		}
		s.mu.RUnlock()

		for _, inv := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(inv, nil) {
				return
			}
		}
	}
}

// ==================== Payment Store ====================

func (s *Store) PutPayment(_ context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.payments[p.ID] = &cp
	return nil
}

func (s *Store) GetPayment(_ context.Context, payID string) (*payment.Payment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.payments[payID]; ok {
		cp := *p
		return &cp, true, nil
	}
	return nil, false, nil
}

func (s *Store) ScanPayments(ctx context.Context) iter.Seq2[*payment.Payment, error] {
	return func(yield func(*payment.Payment, error) bool) {
		s.mu.RLock()
		snapshot := make([]payment.Payment, 0, len(s.payments))
		for _, p := range s.payments {
			snapshot = append(snapshot, *p)
		}
		s.mu.RUnlock()

		for i := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(&snapshot[i], nil) {
				return
			}
		}
	}
}

// ==================== Helpers ====================

func cloneInvoice(inv *invoice.Invoice) *invoice.Invoice {
	cp := *inv
	cp.Services = slices.Clone(inv.Services)
	if inv.UpdatedAt != nil {
		t := *inv.UpdatedAt
		cp.UpdatedAt = &t
	}
	return &cp
}
