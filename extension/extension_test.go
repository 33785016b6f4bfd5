package extension

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/billing"
	"github.com/xraph/billing/export"
	"github.com/xraph/billing/notify/pubsub"
	"github.com/xraph/billing/store/driver"
	"github.com/xraph/billing/store/memory"
)

func TestMergeWithDefaults(t *testing.T) {
	cfg := mergeWithDefaults(Config{DefaultDueIn: time.Hour})

	assert.Equal(t, time.Hour, cfg.DefaultDueIn)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, driver.File, cfg.Store.Driver)
	assert.Equal(t, driver.DefaultDir, cfg.Store.Dir)
	assert.Equal(t, export.SinkDir, cfg.Export.Kind)
	assert.Equal(t, export.DefaultDir, cfg.Export.Dir)
	assert.Equal(t, IDFormatTypeID, cfg.IDFormat)
	assert.Equal(t, "smtp.gmail.com", cfg.Email.Host)
	assert.Equal(t, 587, cfg.Email.Port)
}

func TestMergeConfigurations(t *testing.T) {
	yaml := Config{
		Store:        driver.Config{Driver: driver.Memory},
		DefaultDueIn: 48 * time.Hour,
	}
	programmatic := Config{
		DisableMigrate: true,
		Store:          driver.Config{Driver: driver.Redis, RedisURL: "redis://x"},
		DefaultDueIn:   time.Hour,
		NotifyTimeout:  time.Second,
		IDFormat:       IDFormatTimestamp,
	}

	cfg := mergeConfigurations(yaml, programmatic)

	assert.True(t, cfg.DisableMigrate)
	assert.Equal(t, driver.Memory, cfg.Store.Driver, "yaml wins")
	assert.Equal(t, 48*time.Hour, cfg.DefaultDueIn, "yaml wins")
	assert.Equal(t, time.Second, cfg.NotifyTimeout, "programmatic fills gap")
	assert.Equal(t, IDFormatTimestamp, cfg.IDFormat)
	assert.Equal(t, driver.DefaultDir, cfg.Store.Dir, "defaults fill the rest")
}

func TestBuildBillingOpts(t *testing.T) {
	dir := t.TempDir()
	e := New(
		WithConfig(mergeWithDefaults(Config{Export: export.SinkConfig{Dir: dir}})),
		WithLegacyIDs(),
		WithBillingOption(billing.WithClock(func() time.Time {
			return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
		})),
	)

	opts, err := e.buildBillingOpts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, e.closers)

	eng := billing.New(memory.New(), opts...)
	ctx := context.Background()
	require.NoError(t, eng.Start(ctx))

	invID, err := eng.CreateInvoice(ctx, billing.CreateInvoiceInput{
		ClientName: "Tech Corp",
		Services:   []string{"SEO"},
		Amount:     decimalPtr("100"),
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-20240115-103000", invID)
}

func TestBuildBillingOptsErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad id format", Config{IDFormat: "uuid"}},
		{"bad sink", Config{Export: export.SinkConfig{Kind: "ftp"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithConfig(tt.cfg))
			_, err := e.buildBillingOpts(context.Background())
			assert.Error(t, err)
		})
	}
}

type closeCounter struct{ n int }

func (c *closeCounter) Close() error {
	c.n++
	return nil
}

// ownedStore counts Close calls on a memory store.
type ownedStore struct {
	*memory.Store
	closed int
}

func (s *ownedStore) Close() error {
	s.closed++
	return nil
}

// failingPubSub has a topic but no project, so dialing fails before any
// network access.
func failingPubSub(dir string) Config {
	return mergeWithDefaults(Config{
		Store:  driver.Config{Driver: driver.Memory},
		Export: export.SinkConfig{Dir: dir},
		PubSub: pubsub.Config{Topic: "billing-events"},
	})
}

func TestOpenReleasesOnError(t *testing.T) {
	sink := &closeCounter{}
	e := New(WithConfig(failingPubSub(t.TempDir())))
	e.closers = append(e.closers, sink)

	err := e.open(context.Background())
	require.ErrorContains(t, err, "project_id is required")

	assert.Equal(t, 1, sink.n)
	assert.Empty(t, e.closers)
	assert.Nil(t, e.store, "store opened from config is closed")
	assert.False(t, e.ownsStore)
	assert.Nil(t, e.engine)
}

func TestOpenKeepsCallerStore(t *testing.T) {
	s := &ownedStore{Store: memory.New()}
	e := New(WithConfig(failingPubSub(t.TempDir())), WithStore(s))

	require.Error(t, e.open(context.Background()))
	assert.Equal(t, 0, s.closed)
	assert.Same(t, s, e.store)
}

func TestOpenPassesLogger(t *testing.T) {
	var buf bytes.Buffer
	e := New(
		WithConfig(mergeWithDefaults(Config{
			Store:  driver.Config{Driver: driver.Memory},
			Export: export.SinkConfig{Dir: t.TempDir()},
		})),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)

	ctx := context.Background()
	require.NoError(t, e.open(ctx))
	require.NotNil(t, e.engine)
	require.NoError(t, e.engine.Start(ctx))

	_, err := e.engine.CreateInvoice(ctx, billing.CreateInvoiceInput{
		ClientName: "Tech Corp",
		Services:   []string{"SEO"},
		Amount:     decimalPtr("100"),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "invoice created")
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
