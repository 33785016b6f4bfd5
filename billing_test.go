package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/billing"
	"github.com/xraph/billing/store/memory"
)

func TestStartStop(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Start(context.Background()))
	assert.Len(t, h.rec.kinds("init"), 1)

	require.NoError(t, h.engine.Stop())
	assert.Len(t, h.rec.kinds("shutdown"), 1)
}

type failingMigrate struct {
	*memory.Store
}

func (failingMigrate) Migrate(context.Context) error { return errStoreDown }

func TestStartMigrateError(t *testing.T) {
	rec := &recorder{}
	e := billing.New(failingMigrate{memory.New()}, billing.WithPlugin(rec))

	err := e.Start(context.Background())
	assert.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, rec.kinds("init"))
}

func TestDuplicatePluginIgnored(t *testing.T) {
	rec := &recorder{}
	e := billing.New(memory.New(), billing.WithPlugin(rec), billing.WithPlugin(&recorder{}))
	assert.Equal(t, 1, e.Plugins().Count())
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, billing.IsNotFound(billing.ErrInvoiceNotFound))
	assert.True(t, billing.IsNotFound(billing.ErrPaymentNotFound))
	assert.False(t, billing.IsNotFound(errStoreDown))

	var multi billing.MultiError
	assert.NoError(t, multi.ErrorOrNil())
	multi.Add(nil)
	assert.False(t, multi.HasErrors())

	multi.Add(&billing.StorageError{Op: "update", Kind: "invoice", ID: "inv_1", Err: errStoreDown})
	multi.Add(errors.New("other"))
	err := multi.ErrorOrNil()
	require.Error(t, err)
	assert.Equal(t, "billing: 2 errors occurred", err.Error())
	assert.ErrorIs(t, err, errStoreDown)
	assert.True(t, billing.IsStorage(err))
	require.Len(t, multi.Errors, 2)
	assert.Equal(t, "billing: update invoice inv_1: store down", multi.Errors[0].Error())
}
