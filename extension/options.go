package extension

import (
	"log/slog"
	"time"

	"github.com/xraph/billing"
	"github.com/xraph/billing/plugin"
	"github.com/xraph/billing/store"
)

// Option configures the billing Forge extension.
type Option func(*Extension)

// WithStore sets the store for the billing engine. It takes precedence over
// Config.Store; use it for the grove-backed stores.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithBillingOption passes a billing.Option through to the underlying engine.
func WithBillingOption(opt billing.Option) Option {
	return func(e *Extension) {
		e.billingOpts = append(e.billingOpts, opt)
	}
}

// WithPlugin registers a billing plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.billingOpts = append(e.billingOpts, billing.WithPlugin(p))
	}
}

// WithLogger sets the logger handed to the engine, exporter and notifiers.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extension) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithDefaultDueIn sets the payment term for invoices without a due date.
func WithDefaultDueIn(d time.Duration) Option {
	return func(e *Extension) { e.config.DefaultDueIn = d }
}

// WithNotifyTimeout sets the per-call plugin timeout.
func WithNotifyTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.NotifyTimeout = d }
}

// WithLegacyIDs switches new records to INV-YYYYMMDD-HHMMSS identifiers.
func WithLegacyIDs() Option {
	return func(e *Extension) { e.config.IDFormat = IDFormatTimestamp }
}
