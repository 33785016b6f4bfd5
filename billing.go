package billing

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/xraph/billing/export"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/plugin"
	"github.com/xraph/billing/report"
	"github.com/xraph/billing/store"
)

// DefaultDueIn is the payment term applied when an invoice has no due date.
const DefaultDueIn = 30 * 24 * time.Hour

// Engine is the main billing engine.
type Engine struct {
	store    store.Store
	plugins  *plugin.Registry
	logger   *slog.Logger
	validate *validator.Validate
	reports  *report.Generator
	exporter *export.Exporter

	// Configuration
	ids   id.Generator
	now   func() time.Time
	dueIn time.Duration
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		plugins:  plugin.NewRegistry(),
		logger:   slog.Default(),
		validate: newValidator(),
		ids:      id.TypeIDGenerator{},
		now:      time.Now,
		dueIn:    DefaultDueIn,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.reports = report.NewGenerator(s, report.WithClock(e.now))
	if e.exporter == nil {
		e.exporter = export.NewExporter(export.DirSink{Dir: export.DefaultDir}, export.WithLogger(e.logger))
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithIDGenerator replaces the TypeID generator, e.g. with
// id.TimestampGenerator for stores holding legacy identifiers.
func WithIDGenerator(g id.Generator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithClock sets the time source for timestamps, due dates and reports.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithDefaultDueIn sets the payment term for invoices without a due date.
func WithDefaultDueIn(d time.Duration) Option {
	return func(e *Engine) {
		e.dueIn = d
	}
}

// WithExporter sets where tabular report exports are written. The default
// writes to export.DefaultDir.
func WithExporter(x *export.Exporter) Option {
	return func(e *Engine) {
		e.exporter = x
	}
}

// WithNotifyTimeout bounds every plugin hook and notifier call.
func WithNotifyTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.plugins.WithTimeout(d)
	}
}

// Start prepares the store and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("billing engine started",
		"plugins", e.plugins.Count(),
		"default_due_in", e.dueIn,
	)

	return nil
}

// Stop shuts down plugins and closes the store.
func (e *Engine) Stop() error {
	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// Store returns the underlying record store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry.
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }
