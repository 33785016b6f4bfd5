package extension

import (
	"time"

	"github.com/xraph/billing/export"
	"github.com/xraph/billing/notify/email"
	"github.com/xraph/billing/notify/pubsub"
	"github.com/xraph/billing/store/driver"
)

// ID formats accepted by Config.IDFormat.
const (
	IDFormatTypeID    = "typeid"
	IDFormatTimestamp = "timestamp"
)

// Config holds the billing extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.billing" or "billing" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Store selects the record store backend when no store was provided
	// programmatically (default: file store under "data").
	Store driver.Config `json:"store" mapstructure:"store" yaml:"store"`

	// Export configures where tabular report exports are written
	// (default: "data/reports").
	Export export.SinkConfig `json:"export" mapstructure:"export" yaml:"export"`

	// DefaultDueIn is the payment term applied to invoices created without
	// a due date (default: 720h).
	DefaultDueIn time.Duration `json:"default_due_in" mapstructure:"default_due_in" yaml:"default_due_in"`

	// NotifyTimeout bounds every plugin hook and notifier call (default: 5s).
	NotifyTimeout time.Duration `json:"notify_timeout" mapstructure:"notify_timeout" yaml:"notify_timeout"`

	// IDFormat is "typeid" (default) or "timestamp" for the legacy
	// INV-YYYYMMDD-HHMMSS identifiers.
	IDFormat string `json:"id_format" mapstructure:"id_format" yaml:"id_format"`

	// EmailEnabled registers the SMTP email notifier.
	EmailEnabled bool `json:"email_enabled" mapstructure:"email_enabled" yaml:"email_enabled"`

	// Email configures the SMTP relay used when EmailEnabled is set.
	Email email.Config `json:"email" mapstructure:"email" yaml:"email"`

	// PubSub registers the Pub/Sub notifier when Topic is set.
	PubSub pubsub.Config `json:"pubsub" mapstructure:"pubsub" yaml:"pubsub"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Store:         driver.Config{Driver: driver.File, Dir: driver.DefaultDir},
		Export:        export.SinkConfig{Kind: export.SinkDir, Dir: export.DefaultDir},
		DefaultDueIn:  30 * 24 * time.Hour,
		NotifyTimeout: 5 * time.Second,
		IDFormat:      IDFormatTypeID,
		Email:         email.DefaultConfig(),
	}
}
