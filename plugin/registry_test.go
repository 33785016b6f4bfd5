package plugin_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/billing/export"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/plugin"
	"github.com/xraph/billing/report"
	"github.com/xraph/billing/types"
)

type named struct{ name string }

func (n named) Name() string { return n.name }

// counting implements OnInvoiceCreated and ReportNotifier.
type counting struct {
	named
	mu      sync.Mutex
	created int
	reports int
	err     error
}

func (c *counting) OnInvoiceCreated(context.Context, *invoice.Invoice) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created++
	return c.err
}

func (c *counting) NotifyReportReady(context.Context, *report.Report, types.Recipient, *export.Artifact) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports++
	return c.err
}

// blocking hangs in OnInvoiceCreated until its context ends.
type blocking struct{ named }

func (b blocking) OnInvoiceCreated(ctx context.Context, _ *invoice.Invoice) error {
	<-ctx.Done()
	return ctx.Err()
}

// exploding panics in NotifyInvoiceCreated.
type exploding struct{ named }

func (exploding) NotifyInvoiceCreated(context.Context, *invoice.Invoice, types.Recipient) error {
	panic("smtp client nil")
}

// invoiceCounter counts NotifyInvoiceCreated calls.
type invoiceCounter struct {
	named
	mu    sync.Mutex
	calls int
}

func (c *invoiceCounter) NotifyInvoiceCreated(context.Context, *invoice.Invoice, types.Recipient) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

func quietRegistry(buf *bytes.Buffer) *plugin.Registry {
	return plugin.NewRegistry().WithLogger(slog.New(slog.NewTextHandler(buf, nil)))
}

func TestRegisterDuplicate(t *testing.T) {
	var buf bytes.Buffer
	r := quietRegistry(&buf)

	require.NoError(t, r.Register(named{"audit"}))
	err := r.Register(named{"audit"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate registration: audit")
	assert.Equal(t, 1, r.Count())
}

func TestRegisterLogsInterfaces(t *testing.T) {
	var buf bytes.Buffer
	r := quietRegistry(&buf)

	require.NoError(t, r.Register(&counting{named: named{"c"}}))
	assert.Contains(t, buf.String(), "OnInvoiceCreated")
	assert.Contains(t, buf.String(), "ReportNotifier")
	assert.NotContains(t, buf.String(), "OnShutdown")
}

func TestGetAndList(t *testing.T) {
	var buf bytes.Buffer
	r := quietRegistry(&buf)
	require.NoError(t, r.Register(named{"a"}))
	require.NoError(t, r.Register(named{"b"}))

	assert.Equal(t, "b", r.Get("b").Name())
	assert.Nil(t, r.Get("missing"))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name())
}

func TestDispatchOnlyToImplementers(t *testing.T) {
	var buf bytes.Buffer
	r := quietRegistry(&buf)
	c := &counting{named: named{"c"}}
	require.NoError(t, r.Register(c))
	require.NoError(t, r.Register(named{"plain"}))

	ctx := context.Background()
	r.EmitInvoiceCreated(ctx, &invoice.Invoice{ID: "inv"})
	r.NotifyReportReady(ctx, &report.Report{}, types.Recipient{Email: "a@b.c"}, nil)
	r.NotifyInvoiceCreated(ctx, &invoice.Invoice{ID: "inv"}, types.Recipient{Email: "a@b.c"})

	assert.Equal(t, 1, c.created)
	assert.Equal(t, 1, c.reports)
}

func TestFailureIsolation(t *testing.T) {
	var buf bytes.Buffer
	r := quietRegistry(&buf)
	failing := &counting{named: named{"failing"}, err: errors.New("boom")}
	ok := &counting{named: named{"ok"}}
	require.NoError(t, r.Register(failing))
	require.NoError(t, r.Register(ok))

	r.EmitInvoiceCreated(context.Background(), &invoice.Invoice{ID: "inv"})

	assert.Equal(t, 1, failing.created)
	assert.Equal(t, 1, ok.created)
	assert.Contains(t, buf.String(), "plugin OnInvoiceCreated failed")
	assert.Contains(t, buf.String(), "boom")
}

func TestPanicIsolation(t *testing.T) {
	var buf bytes.Buffer
	r := quietRegistry(&buf)
	after := &invoiceCounter{named: named{"after"}}
	require.NoError(t, r.Register(exploding{named{"exploding"}}))
	require.NoError(t, r.Register(after))

	assert.NotPanics(t, func() {
		r.NotifyInvoiceCreated(context.Background(), &invoice.Invoice{ID: "inv"}, types.Recipient{Email: "a@example.com"})
	})

	assert.Equal(t, 1, after.calls)
	assert.Contains(t, buf.String(), "plugin NotifyInvoiceCreated failed")
	assert.Contains(t, buf.String(), "plugin panic: exploding: smtp client nil")
}

func TestTimeout(t *testing.T) {
	var buf bytes.Buffer
	r := quietRegistry(&buf).WithTimeout(20 * time.Millisecond)
	ok := &counting{named: named{"ok"}}
	require.NoError(t, r.Register(blocking{named{"slow"}}))
	require.NoError(t, r.Register(ok))

	start := time.Now()
	r.EmitInvoiceCreated(context.Background(), &invoice.Invoice{ID: "inv"})

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 1, ok.created)
	assert.Contains(t, buf.String(), "plugin=slow")
	assert.Contains(t, buf.String(), "deadline exceeded")
}

func TestWithTimeoutIgnoresNonPositive(t *testing.T) {
	var buf bytes.Buffer
	r := quietRegistry(&buf).WithTimeout(0).WithTimeout(-time.Second)
	require.NoError(t, r.Register(&counting{named: named{"c"}}))
	r.EmitInvoiceCreated(context.Background(), &invoice.Invoice{})
}
