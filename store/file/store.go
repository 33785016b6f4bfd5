// Package file provides a store.Store that keeps one JSON document per
// record on the local filesystem:
//
//	<dir>/invoices/<id>.json
//	<dir>/payments/<id>.json
//
// Writes go through a temporary file and a rename, so a reader never sees
// a partially written record.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/store"
	"github.com/xraph/billing/store/record"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

const (
	dirInvoices = "invoices"
	dirPayments = "payments"
	ext         = ".json"
)

// Store implements store.Store on a directory tree.
type Store struct {
	root string
}

// New creates a file store rooted at dir. Call Migrate to create the
// directory layout.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// Migrate creates the record directories.
func (s *Store) Migrate(_ context.Context) error {
	for _, d := range []string{dirInvoices, dirPayments} {
		if err := os.MkdirAll(filepath.Join(s.root, d), 0o755); err != nil {
			return fmt.Errorf("billing/file: migrate %s: %w", d, err)
		}
	}
	return nil
}

// Ping checks that the root directory is accessible.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("billing/file: ping: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("billing/file: ping: %s is not a directory", s.root)
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// ==================== Invoice Store ====================

func (s *Store) PutInvoice(_ context.Context, inv *invoice.Invoice) error {
	path, err := s.path(dirInvoices, inv.ID)
	if err != nil {
		return err
	}
	if err := writeJSON(path, record.FromInvoice(inv)); err != nil {
		return fmt.Errorf("billing/file: put invoice %s: %w", inv.ID, err)
	}
	return nil
}

func (s *Store) GetInvoice(_ context.Context, invID string) (*invoice.Invoice, bool, error) {
	path, err := s.path(dirInvoices, invID)
	if err != nil {
		// Put rejects such ids, so nothing is stored under them.
		return nil, false, nil
	}

	var r record.Invoice
	found, err := readJSON(path, &r)
	if err != nil || !found {
		return nil, false, wrap("get invoice", invID, err)
	}

	inv, err := r.Invoice()
	if err != nil {
		return nil, false, wrap("get invoice", invID, err)
	}
	return inv, true, nil
}

func (s *Store) ScanInvoices(ctx context.Context) iter.Seq2[*invoice.Invoice, error] {
	return func(yield func(*invoice.Invoice, error) bool) {
		for path, err := range s.walk(ctx, dirInvoices) {
			if err != nil {
				yield(nil, err)
				return
			}

			var r record.Invoice
			found, err := readJSON(path, &r)
			if err != nil {
				yield(nil, wrap("scan invoices", filepath.Base(path), err))
				return
			}
			if !found {
				// Removed between listing and reading.
				continue
			}

			inv, err := r.Invoice()
			if err != nil {
				yield(nil, wrap("scan invoices", filepath.Base(path), err))
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
	path, err := s.path(dirPayments, p.ID)
	if err != nil {
		return err
	}
	if err := writeJSON(path, record.FromPayment(p)); err != nil {
		return fmt.Errorf("billing/file: put payment %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) GetPayment(_ context.Context, payID string) (*payment.Payment, bool, error) {
	path, err := s.path(dirPayments, payID)
	if err != nil {
		// Put rejects such ids, so nothing is stored under them.
		return nil, false, nil
	}

	var r record.Payment
	found, err := readJSON(path, &r)
	if err != nil || !found {
		return nil, false, wrap("get payment", payID, err)
	}

	p, err := r.Payment()
	if err != nil {
		return nil, false, wrap("get payment", payID, err)
	}
	return p, true, nil
}

func (s *Store) ScanPayments(ctx context.Context) iter.Seq2[*payment.Payment, error] {
	return func(yield func(*payment.Payment, error) bool) {
		for path, err := range s.walk(ctx, dirPayments) {
			if err != nil {
				yield(nil, err)
				return
			}

			var r record.Payment
			found, err := readJSON(path, &r)
			if err != nil {
				yield(nil, wrap("scan payments", filepath.Base(path), err))
				return
			}
			if !found {
				continue
			}

			p, err := r.Payment()
			if err != nil {
				yield(nil, wrap("scan payments", filepath.Base(path), err))
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

// ==================== Helpers ====================

// path maps a record ID to its file, rejecting IDs that would escape the
// kind directory.
func (s *Store) path(kind, recordID string) (string, error) {
	if recordID == "" || recordID == "." || recordID == ".." ||
		strings.ContainsAny(recordID, `/\`) {
		return "", fmt.Errorf("billing/file: invalid record id %q", recordID)
	}
	return filepath.Join(s.root, kind, recordID+ext), nil
}

// walk yields the record files of one kind. A missing directory yields
// nothing.
func (s *Store) walk(ctx context.Context, kind string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		dir := filepath.Join(s.root, kind)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return
			}
			yield("", fmt.Errorf("billing/file: list %s: %w", kind, err))
			return
		}

		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
				continue
			}
			if !yield(filepath.Join(dir, e.Name()), nil) {
				return
			}
		}
	}
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func wrap(op, recordID string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("billing/file: %s %s: %w", op, recordID, err)
}
