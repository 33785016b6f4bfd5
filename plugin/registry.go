package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/billing/export"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/report"
	"github.com/xraph/billing/types"
)

// DefaultTimeout bounds a single plugin call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery so emitting an event never type-asserts.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit                 []OnInit
	onShutdown             []OnShutdown
	onInvoiceCreated       []OnInvoiceCreated
	onInvoiceStatusChanged []OnInvoiceStatusChanged
	onPaymentRecorded      []OnPaymentRecorded
	onReportGenerated      []OnReportGenerated
	invoiceNotifiers       []InvoiceNotifier
	reminderNotifiers      []ReminderNotifier
	paymentNotifiers       []PaymentNotifier
	reportNotifiers        []ReportNotifier
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-call plugin timeout. Non-positive values are ignored.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnInvoiceCreated); ok {
		r.onInvoiceCreated = append(r.onInvoiceCreated, v)
	}
	if v, ok := p.(OnInvoiceStatusChanged); ok {
		r.onInvoiceStatusChanged = append(r.onInvoiceStatusChanged, v)
	}
	if v, ok := p.(OnPaymentRecorded); ok {
		r.onPaymentRecorded = append(r.onPaymentRecorded, v)
	}
	if v, ok := p.(OnReportGenerated); ok {
		r.onReportGenerated = append(r.onReportGenerated, v)
	}
	if v, ok := p.(InvoiceNotifier); ok {
		r.invoiceNotifiers = append(r.invoiceNotifiers, v)
	}
	if v, ok := p.(ReminderNotifier); ok {
		r.reminderNotifiers = append(r.reminderNotifiers, v)
	}
	if v, ok := p.(PaymentNotifier); ok {
		r.paymentNotifiers = append(r.paymentNotifiers, v)
	}
	if v, ok := p.(ReportNotifier); ok {
		r.reportNotifiers = append(r.reportNotifiers, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

// hookTypes lists the interfaces reported at registration.
var hookTypes = []struct {
	name  string
	iface reflect.Type
}{
	{"OnInit", reflect.TypeFor[OnInit]()},
	{"OnShutdown", reflect.TypeFor[OnShutdown]()},
	{"OnInvoiceCreated", reflect.TypeFor[OnInvoiceCreated]()},
	{"OnInvoiceStatusChanged", reflect.TypeFor[OnInvoiceStatusChanged]()},
	{"OnPaymentRecorded", reflect.TypeFor[OnPaymentRecorded]()},
	{"OnReportGenerated", reflect.TypeFor[OnReportGenerated]()},
	{"InvoiceNotifier", reflect.TypeFor[InvoiceNotifier]()},
	{"ReminderNotifier", reflect.TypeFor[ReminderNotifier]()},
	{"PaymentNotifier", reflect.TypeFor[PaymentNotifier]()},
	{"ReportNotifier", reflect.TypeFor[ReportNotifier]()},
}

// implementedInterfaces returns the hook interfaces implemented by p.
func implementedInterfaces(p Plugin) []string {
	var names []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.iface) {
			names = append(names, h.name)
		}
	}
	return names
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// Emission never fails: plugin errors and timeouts are logged at warn
// level and the remaining plugins still run.

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine any) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "OnInit", func(ctx context.Context) error {
			return p.OnInit(ctx, engine)
		})
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "OnShutdown", p.OnShutdown)
	}
}

// EmitInvoiceCreated emits an invoice created event.
func (r *Registry) EmitInvoiceCreated(ctx context.Context, inv *invoice.Invoice) {
	r.mu.RLock()
	plugins := r.onInvoiceCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "OnInvoiceCreated", func(ctx context.Context) error {
			return p.OnInvoiceCreated(ctx, inv)
		})
	}
}

// EmitInvoiceStatusChanged emits an invoice status changed event.
func (r *Registry) EmitInvoiceStatusChanged(ctx context.Context, inv *invoice.Invoice, previous invoice.Status) {
	r.mu.RLock()
	plugins := r.onInvoiceStatusChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "OnInvoiceStatusChanged", func(ctx context.Context) error {
			return p.OnInvoiceStatusChanged(ctx, inv, previous)
		})
	}
}

// EmitPaymentRecorded emits a payment recorded event.
func (r *Registry) EmitPaymentRecorded(ctx context.Context, pay *payment.Payment) {
	r.mu.RLock()
	plugins := r.onPaymentRecorded
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "OnPaymentRecorded", func(ctx context.Context) error {
			return p.OnPaymentRecorded(ctx, pay)
		})
	}
}

// EmitReportGenerated emits a report generated event.
func (r *Registry) EmitReportGenerated(ctx context.Context, rep *report.Report, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onReportGenerated
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "OnReportGenerated", func(ctx context.Context) error {
			return p.OnReportGenerated(ctx, rep, elapsed)
		})
	}
}

// ──────────────────────────────────────────────────
// Notification methods
// ──────────────────────────────────────────────────

// NotifyInvoiceCreated delivers invoice_created to every InvoiceNotifier.
func (r *Registry) NotifyInvoiceCreated(ctx context.Context, inv *invoice.Invoice, to types.Recipient) {
	r.mu.RLock()
	plugins := r.invoiceNotifiers
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "NotifyInvoiceCreated", func(ctx context.Context) error {
			return p.NotifyInvoiceCreated(ctx, inv, to)
		})
	}
}

// NotifyReminderDue delivers reminder_due to every ReminderNotifier.
func (r *Registry) NotifyReminderDue(ctx context.Context, inv *invoice.Invoice, to types.Recipient, daysOverdue int) {
	r.mu.RLock()
	plugins := r.reminderNotifiers
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "NotifyReminderDue", func(ctx context.Context) error {
			return p.NotifyReminderDue(ctx, inv, to, daysOverdue)
		})
	}
}

// NotifyPaymentConfirmed delivers payment_confirmed to every PaymentNotifier.
func (r *Registry) NotifyPaymentConfirmed(ctx context.Context, pay *payment.Payment, inv *invoice.Invoice, to types.Recipient) {
	r.mu.RLock()
	plugins := r.paymentNotifiers
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "NotifyPaymentConfirmed", func(ctx context.Context) error {
			return p.NotifyPaymentConfirmed(ctx, pay, inv, to)
		})
	}
}

// NotifyReportReady delivers report_ready to every ReportNotifier.
func (r *Registry) NotifyReportReady(ctx context.Context, rep *report.Report, to types.Recipient, table *export.Artifact) {
	r.mu.RLock()
	plugins := r.reportNotifiers
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "NotifyReportReady", func(ctx context.Context) error {
			return p.NotifyReportReady(ctx, rep, to, table)
		})
	}
}

// dispatch runs one hook and logs its failure.
func (r *Registry) dispatch(ctx context.Context, pluginName, hook string, fn func(context.Context) error) {
	if err := r.callWithTimeout(ctx, pluginName, fn); err != nil {
		r.logger.Warn("plugin "+hook+" failed",
			"plugin", pluginName,
			"error", err,
		)
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins must never block the billing pipeline; the plugin receives a
// context that is canceled when the timeout fires. A panic in the plugin
// is returned as an error.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan error, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fmt.Errorf("plugin panic: %s: %v", pluginName, rec)
			}
		}()
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("plugin timeout: %s: %w", pluginName, ctx.Err())
	}
}
