// Package postgres provides a store.Store backed by PostgreSQL via Grove ORM.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	billingstore "github.com/xraph/billing/store"
)

// compile-time interface check
var _ billingstore.Store = (*Store)(nil)

// scanPageSize bounds how many rows a scan holds in memory at once.
const scanPageSize = 500

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db  *grove.DB
	pg  *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		pg:  pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("billing/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("billing/postgres: migration failed: %w", err)
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

// PutInvoice updates the row by primary key and inserts it when no row
// was affected.
func (s *Store) PutInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m, err := toInvoiceModel(inv)
	if err != nil {
		return fmt.Errorf("billing/postgres: put invoice %s: %w", inv.ID, err)
	}

	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("billing/postgres: put invoice %s: %w", inv.ID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("billing/postgres: put invoice %s: %w", inv.ID, err)
	}
	if rows > 0 {
		return nil
	}

	if _, err := s.pg.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("billing/postgres: put invoice %s: %w", inv.ID, err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, invID string) (*invoice.Invoice, bool, error) {
	m := new(invoiceModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", invID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("billing/postgres: get invoice %s: %w", invID, err)
	}

	inv, err := fromInvoiceModel(m)
	if err != nil {
		return nil, false, fmt.Errorf("billing/postgres: get invoice: %w", err)
	}
	return inv, true, nil
}

// ScanInvoices pages through the table by primary key.
func (s *Store) ScanInvoices(ctx context.Context) iter.Seq2[*invoice.Invoice, error] {
	return func(yield func(*invoice.Invoice, error) bool) {
		after := ""
		for {
			var models []invoiceModel
			err := s.pg.NewSelect(&models).
				Where("id > ?", after).
				OrderExpr("id ASC").
				Limit(scanPageSize).
				Scan(ctx)
			if err != nil {
				yield(nil, fmt.Errorf("billing/postgres: scan invoices: %w", err))
				return
			}

			for i := range models {
				inv, err := fromInvoiceModel(&models[i])
				if err != nil {
					yield(nil, fmt.Errorf("billing/postgres: scan invoices: %w", err))
					return
				}
				if !yield(inv, nil) {
					return
				}
			}

			if len(models) < scanPageSize {
				return
			}
			after = models[len(models)-1].ID
		}
	}
}

// ==================== Payment Store ====================

func (s *Store) PutPayment(ctx context.Context, p *payment.Payment) error {
	m := toPaymentModel(p)

	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("billing/postgres: put payment %s: %w", p.ID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("billing/postgres: put payment %s: %w", p.ID, err)
	}
	if rows > 0 {
		return nil
	}

	if _, err := s.pg.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("billing/postgres: put payment %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, payID string) (*payment.Payment, bool, error) {
	m := new(paymentModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", payID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("billing/postgres: get payment %s: %w", payID, err)
	}

	return fromPaymentModel(m), true, nil
}

func (s *Store) ScanPayments(ctx context.Context) iter.Seq2[*payment.Payment, error] {
	return func(yield func(*payment.Payment, error) bool) {
		after := ""
		for {
			var models []paymentModel
			err := s.pg.NewSelect(&models).
				Where("id > ?", after).
				OrderExpr("id ASC").
				Limit(scanPageSize).
				Scan(ctx)
			if err != nil {
				yield(nil, fmt.Errorf("billing/postgres: scan payments: %w", err))
				return
			}

			for i := range models {
				if !yield(fromPaymentModel(&models[i]), nil) {
					return
				}
			}

			if len(models) < scanPageSize {
				return
			}
			after = models[len(models)-1].ID
		}
	}
}

// ==================== Helpers ====================

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
