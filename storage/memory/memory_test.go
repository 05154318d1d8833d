package memory

import (
	"context"
	"testing"

	"github.com/allocd/allocd/domain"
	"github.com/allocd/allocd/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func begin(t *testing.T, s *Store) storage.UnitOfWork {
	t.Helper()
	uow, err := s.Begin(context.Background())
	require.NoError(t, err)
	return uow.(storage.UnitOfWork)
}

func TestCommitMakesChangesVisible(t *testing.T) {
	store := NewStore()

	uow := begin(t, store)
	product := domain.NewProduct("RETRO-CLOCK", domain.NewBatch("batch-001", "RETRO-CLOCK", 100, nil))
	require.NoError(t, uow.Products().Add(product))
	require.NoError(t, uow.Commit())

	uow = begin(t, store)
	got, err := uow.Products().Get("RETRO-CLOCK")
	require.NoError(t, err)
	assert.Equal(t, 100, got.BatchByRef("batch-001").AvailableQuantity())
}

func TestRollbackDiscardsChanges(t *testing.T) {
	store := NewStore()

	uow := begin(t, store)
	require.NoError(t, uow.Products().Add(domain.NewProduct("RETRO-CLOCK")))
	require.NoError(t, uow.Rollback())

	uow = begin(t, store)
	_, err := uow.Products().Get("RETRO-CLOCK")
	assert.Equal(t, domain.UnknownSKUError{SKU: "RETRO-CLOCK"}, err)
}

func TestRollbackAfterCommitIsANoOp(t *testing.T) {
	store := NewStore()

	uow := begin(t, store)
	require.NoError(t, uow.Products().Add(domain.NewProduct("RETRO-CLOCK")))
	require.NoError(t, uow.Commit())
	require.NoError(t, uow.Rollback())

	_, ok := store.Get("RETRO-CLOCK")
	assert.True(t, ok)
}

func TestScopesDoNotShareAggregates(t *testing.T) {
	store := NewStore()

	uow := begin(t, store)
	require.NoError(t, uow.Products().Add(domain.NewProduct("RETRO-CLOCK", domain.NewBatch("batch-001", "RETRO-CLOCK", 100, nil))))
	require.NoError(t, uow.Commit())

	first := begin(t, store)
	p1, err := first.Products().Get("RETRO-CLOCK")
	require.NoError(t, err)
	_, err = p1.Allocate(domain.OrderLine{OrderID: "order-001", SKU: "RETRO-CLOCK", Qty: 10})
	require.NoError(t, err)

	// a second scope opened before the first commits sees committed state only
	second := begin(t, store)
	p2, err := second.Products().Get("RETRO-CLOCK")
	require.NoError(t, err)
	assert.Equal(t, 100, p2.BatchByRef("batch-001").AvailableQuantity())
}

func TestGetByBatchRef(t *testing.T) {
	store := NewStore()

	uow := begin(t, store)
	require.NoError(t, uow.Products().Add(domain.NewProduct("RETRO-CLOCK", domain.NewBatch("batch-001", "RETRO-CLOCK", 100, nil))))
	require.NoError(t, uow.Products().Add(domain.NewProduct("SMALL-TABLE", domain.NewBatch("batch-002", "SMALL-TABLE", 50, nil))))
	require.NoError(t, uow.Commit())

	uow = begin(t, store)
	product, err := uow.Products().GetByBatchRef("batch-002")
	require.NoError(t, err)
	assert.Equal(t, "SMALL-TABLE", product.SKU)

	_, err = uow.Products().GetByBatchRef("batch-999")
	assert.Equal(t, domain.UnknownBatchError{Ref: "batch-999"}, err)
}

func TestCollectNewEventsDrainsSeenAggregates(t *testing.T) {
	store := NewStore()

	uow := begin(t, store)
	product := domain.NewProduct("RETRO-CLOCK", domain.NewBatch("batch-001", "RETRO-CLOCK", 100, nil))
	require.NoError(t, uow.Products().Add(product))
	_, err := product.Allocate(domain.OrderLine{OrderID: "order-001", SKU: "RETRO-CLOCK", Qty: 10})
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	events := uow.CollectNewEvents()
	require.Len(t, events, 1)
	assert.IsType(t, domain.Allocated{}, events[0])

	assert.Len(t, uow.CollectNewEvents(), 0)
}

func TestCommittedStateCarriesNoPendingEvents(t *testing.T) {
	store := NewStore()

	uow := begin(t, store)
	product := domain.NewProduct("RETRO-CLOCK", domain.NewBatch("batch-001", "RETRO-CLOCK", 100, nil))
	require.NoError(t, uow.Products().Add(product))
	_, err := product.Allocate(domain.OrderLine{OrderID: "order-001", SKU: "RETRO-CLOCK", Qty: 10})
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	uow = begin(t, store)
	reloaded, err := uow.Products().Get("RETRO-CLOCK")
	require.NoError(t, err)
	assert.Len(t, reloaded.Release(), 0)
}

func TestFailCommitsAfter(t *testing.T) {
	store := NewStore()
	store.FailCommitsAfter(1, 2)

	uow := begin(t, store)
	require.NoError(t, uow.Products().Add(domain.NewProduct("RETRO-CLOCK")))
	require.NoError(t, uow.Commit())

	uow = begin(t, store)
	require.ErrorIs(t, uow.Commit(), ErrCommitFailed)

	uow = begin(t, store)
	require.ErrorIs(t, uow.Commit(), ErrCommitFailed)

	uow = begin(t, store)
	assert.NoError(t, uow.Commit())
}
