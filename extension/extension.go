// Package extension provides the Forge extension adapter for the billing
// engine.
//
// It implements the forge.Extension interface to integrate billing
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.billing" or "billing" keys.
package extension

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/billing"
	"github.com/xraph/billing/export"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/notify/email"
	"github.com/xraph/billing/notify/pubsub"
	"github.com/xraph/billing/store"
	"github.com/xraph/billing/store/driver"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "billing"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Invoice, payment and reporting engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the billing engine as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config      Config
	engine      *billing.Engine
	store       store.Store
	ownsStore   bool
	closers     []io.Closer
	logger      *slog.Logger
	billingOpts []billing.Option
}

// New creates a new billing Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
		logger:        slog.Default().With("extension", ExtensionName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying billing engine.
// This is nil until Register is called.
func (e *Extension) Engine() *billing.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the billing engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if err := e.open(context.Background()); err != nil {
		return err
	}

	return vessel.Provide(fapp.Container(), func() (*billing.Engine, error) {
		return e.engine, nil
	})
}

// open builds the engine from the resolved config. When it fails, every
// resource it opened is closed again.
func (e *Extension) open(ctx context.Context) error {
	if e.store == nil {
		s, err := driver.Open(ctx, e.config.Store)
		if err != nil {
			return err
		}
		e.store = s
		e.ownsStore = true
	}

	opts, err := e.buildBillingOpts(ctx)
	if err != nil {
		e.release()
		return err
	}

	e.engine = billing.New(e.store, opts...)
	return nil
}

// release closes the sinks and publishers opened by buildBillingOpts and a
// store opened from Config.Store. A store passed via WithStore is left open.
func (e *Extension) release() {
	for _, c := range e.closers {
		if err := c.Close(); err != nil {
			e.logger.Warn("billing: release failed", "error", err)
		}
	}
	e.closers = nil

	if e.ownsStore {
		if err := e.store.Close(); err != nil {
			e.logger.Warn("billing: close store failed", "error", err)
		}
		e.store = nil
		e.ownsStore = false
	}
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("billing: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	var errs billing.MultiError
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			errs.Add(err)
		}
	}
	for _, c := range e.closers {
		if err := c.Close(); err != nil {
			errs.Add(err)
		}
	}
	e.MarkStopped()
	return errs.ErrorOrNil()
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("billing: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildBillingOpts constructs billing.Option values from the resolved config.
// Resources opened here (export sinks, Pub/Sub clients) are closed by Stop.
func (e *Extension) buildBillingOpts(ctx context.Context) ([]billing.Option, error) {
	opts := make([]billing.Option, 0, len(e.billingOpts)+7)
	opts = append(opts, billing.WithLogger(e.logger))

	if e.config.DefaultDueIn > 0 {
		opts = append(opts, billing.WithDefaultDueIn(e.config.DefaultDueIn))
	}
	if e.config.NotifyTimeout > 0 {
		opts = append(opts, billing.WithNotifyTimeout(e.config.NotifyTimeout))
	}

	switch e.config.IDFormat {
	case "", IDFormatTypeID:
	case IDFormatTimestamp:
		opts = append(opts, billing.WithIDGenerator(id.TimestampGenerator{}))
	default:
		return nil, errors.New("billing: unknown id_format " + e.config.IDFormat)
	}

	sink, closer, err := export.NewSink(ctx, e.config.Export)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		e.closers = append(e.closers, closer)
	}
	opts = append(opts, billing.WithExporter(export.NewExporter(sink, export.WithLogger(e.logger))))

	if e.config.EmailEnabled {
		opts = append(opts, billing.WithPlugin(email.NewSMTP(e.config.Email, email.WithLogger(e.logger))))
	}

	if e.config.PubSub.Topic != "" {
		pub, err := pubsub.Dial(ctx, e.config.PubSub)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, pub)
		opts = append(opts, billing.WithPlugin(pubsub.New(pub, pubsub.WithLogger(e.logger))))
	}

	// Append any pass-through billing options.
	opts = append(opts, e.billingOpts...)

	return opts, nil
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("billing: configuration is required but not found in config files; " +
				"ensure 'extensions.billing' or 'billing' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("billing: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("store_driver", e.config.Store.Driver),
		forge.F("export_kind", e.config.Export.Kind),
		forge.F("default_due_in", e.config.DefaultDueIn),
		forge.F("notify_timeout", e.config.NotifyTimeout),
		forge.F("id_format", e.config.IDFormat),
		forge.F("email_enabled", e.config.EmailEnabled),
		forge.F("pubsub_topic", e.config.PubSub.Topic),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.billing" first (namespaced pattern).
	if cm.IsSet("extensions.billing") {
		if err := cm.Bind("extensions.billing", &cfg); err == nil {
			e.Logger().Debug("billing: loaded config from file",
				forge.F("key", "extensions.billing"),
			)
			return cfg, true
		}
		e.Logger().Warn("billing: failed to bind extensions.billing config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "billing" key.
	if cm.IsSet("billing") {
		if err := cm.Bind("billing", &cfg); err == nil {
			e.Logger().Debug("billing: loaded config from file",
				forge.F("key", "billing"),
			)
			return cfg, true
		}
		e.Logger().Warn("billing: failed to bind billing config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = defaults.Store.Driver
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = defaults.Store.Dir
	}
	if cfg.Export.Kind == "" {
		cfg.Export.Kind = defaults.Export.Kind
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = defaults.Export.Dir
	}
	if cfg.DefaultDueIn == 0 {
		cfg.DefaultDueIn = defaults.DefaultDueIn
	}
	if cfg.NotifyTimeout == 0 {
		cfg.NotifyTimeout = defaults.NotifyTimeout
	}
	if cfg.IDFormat == "" {
		cfg.IDFormat = defaults.IDFormat
	}
	if cfg.Email.Host == "" {
		cfg.Email.Host = defaults.Email.Host
	}
	if cfg.Email.Port == 0 {
		cfg.Email.Port = defaults.Email.Port
	}
	if cfg.Email.FromEmail == "" {
		cfg.Email.FromEmail = defaults.Email.FromEmail
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = defaults.Email.FromName
	}
	if cfg.Email.Company == "" {
		cfg.Email.Company = defaults.Email.Company
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.EmailEnabled {
		yamlConfig.EmailEnabled = true
	}

	// Struct and string fields: YAML takes precedence.
	if yamlConfig.Store == (driver.Config{}) {
		yamlConfig.Store = programmaticConfig.Store
	}
	if yamlConfig.Export == (export.SinkConfig{}) {
		yamlConfig.Export = programmaticConfig.Export
	}
	if yamlConfig.Email == (email.Config{}) {
		yamlConfig.Email = programmaticConfig.Email
	}
	if yamlConfig.PubSub == (pubsub.Config{}) {
		yamlConfig.PubSub = programmaticConfig.PubSub
	}
	if yamlConfig.IDFormat == "" {
		yamlConfig.IDFormat = programmaticConfig.IDFormat
	}

	// Duration fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.DefaultDueIn == 0 && programmaticConfig.DefaultDueIn != 0 {
		yamlConfig.DefaultDueIn = programmaticConfig.DefaultDueIn
	}
	if yamlConfig.NotifyTimeout == 0 && programmaticConfig.NotifyTimeout != 0 {
		yamlConfig.NotifyTimeout = programmaticConfig.NotifyTimeout
	}

	// Fill remaining zeros with defaults.
	return mergeWithDefaults(yamlConfig)
}
