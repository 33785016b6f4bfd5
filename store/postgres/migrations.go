package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the billing store.
var Migrations = migrate.NewGroup("billing")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_billing_invoices",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS billing_invoices (
    id           TEXT PRIMARY KEY,
    client_name  TEXT NOT NULL DEFAULT '',
    client_email TEXT NOT NULL DEFAULT '',
    services     JSONB NOT NULL DEFAULT '[]',
    amount       NUMERIC NOT NULL DEFAULT 0,
    due_date     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    status       TEXT NOT NULL DEFAULT 'pending',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_billing_invoices_status_due ON billing_invoices (status, due_date);
CREATE INDEX IF NOT EXISTS idx_billing_invoices_created ON billing_invoices (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS billing_invoices`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_billing_payments",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS billing_payments (
    id             TEXT PRIMARY KEY,
    invoice_id     TEXT NOT NULL DEFAULT '',
    amount         NUMERIC NOT NULL DEFAULT 0,
    payment_method TEXT NOT NULL DEFAULT '',
    recorded_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_billing_payments_invoice ON billing_payments (invoice_id);
CREATE INDEX IF NOT EXISTS idx_billing_payments_recorded ON billing_payments (recorded_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS billing_payments`)
				return err
			},
		},
	)
}
