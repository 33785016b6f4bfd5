package billing_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/billing"
	"github.com/xraph/billing/export"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/payment"
	"github.com/xraph/billing/report"
	"github.com/xraph/billing/store/memory"
	"github.com/xraph/billing/types"
)

var base = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// event is one hook or notifier call seen by the recorder.
type event struct {
	Kind        string
	Invoice     *invoice.Invoice
	Payment     *payment.Payment
	Report      *report.Report
	To          types.Recipient
	DaysOverdue int
	Previous    invoice.Status
	Table       *export.Artifact
}

// recorder implements every hook and notifier interface.
type recorder struct {
	mu     sync.Mutex
	events []event
	fail   error
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) add(e event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.fail
}

func (r *recorder) kinds(kind string) []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) OnInit(context.Context, any) error { return r.add(event{Kind: "init"}) }
func (r *recorder) OnShutdown(context.Context) error  { return r.add(event{Kind: "shutdown"}) }

func (r *recorder) OnInvoiceCreated(_ context.Context, inv *invoice.Invoice) error {
	return r.add(event{Kind: "invoice_created_hook", Invoice: inv})
}

func (r *recorder) OnInvoiceStatusChanged(_ context.Context, inv *invoice.Invoice, previous invoice.Status) error {
	return r.add(event{Kind: "status_changed", Invoice: inv, Previous: previous})
}

func (r *recorder) OnPaymentRecorded(_ context.Context, p *payment.Payment) error {
	return r.add(event{Kind: "payment_recorded", Payment: p})
}

func (r *recorder) OnReportGenerated(_ context.Context, rep *report.Report, _ time.Duration) error {
	return r.add(event{Kind: "report_generated", Report: rep})
}

func (r *recorder) NotifyInvoiceCreated(_ context.Context, inv *invoice.Invoice, to types.Recipient) error {
	return r.add(event{Kind: "invoice_created", Invoice: inv, To: to})
}

func (r *recorder) NotifyReminderDue(_ context.Context, inv *invoice.Invoice, to types.Recipient, days int) error {
	return r.add(event{Kind: "reminder_due", Invoice: inv, To: to, DaysOverdue: days})
}

func (r *recorder) NotifyPaymentConfirmed(_ context.Context, p *payment.Payment, inv *invoice.Invoice, to types.Recipient) error {
	return r.add(event{Kind: "payment_confirmed", Payment: p, Invoice: inv, To: to})
}

func (r *recorder) NotifyReportReady(_ context.Context, rep *report.Report, to types.Recipient, table *export.Artifact) error {
	return r.add(event{Kind: "report_ready", Report: rep, To: to, Table: table})
}

type harness struct {
	engine *billing.Engine
	store  *memory.Store
	clock  *clock
	rec    *recorder
}

func newHarness(t *testing.T, opts ...billing.Option) *harness {
	t.Helper()
	h := &harness{
		store: memory.New(),
		clock: &clock{now: base},
		rec:   &recorder{},
	}
	all := append([]billing.Option{
		billing.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		billing.WithClock(h.clock.Now),
		billing.WithPlugin(h.rec),
		billing.WithExporter(export.NewExporter(export.DirSink{Dir: t.TempDir()})),
	}, opts...)
	h.engine = billing.New(h.store, all...)
	return h
}

func (h *harness) createInvoice(t *testing.T, in billing.CreateInvoiceInput) *invoice.Invoice {
	t.Helper()
	invID, err := h.engine.CreateInvoice(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	inv, found, err := h.engine.GetInvoice(context.Background(), invID)
	if err != nil || !found {
		t.Fatalf("GetInvoice(%s): found=%v err=%v", invID, found, err)
	}
	return inv
}

func techCorp() billing.CreateInvoiceInput {
	return billing.CreateInvoiceInput{
		ClientName:  "TechCorp",
		ClientEmail: "ap@techcorp.test",
		Services:    []string{"Web Design"},
		Amount:      amount("2000"),
	}
}

var errStoreDown = errors.New("store down")

// brokenStore fails every write.
type brokenStore struct {
	*memory.Store
}

func (brokenStore) PutInvoice(context.Context, *invoice.Invoice) error { return errStoreDown }
func (brokenStore) PutPayment(context.Context, *payment.Payment) error { return errStoreDown }
