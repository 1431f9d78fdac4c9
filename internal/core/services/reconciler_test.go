package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

func newTestReconciler() (*Reconciler, *mockConnectorBackend, *mockEntitlementBackend) {
	cb := newMockConnectorBackend()
	eb := &mockEntitlementBackend{}
	return NewReconciler(cb, eb, nil, time.Hour), cb, eb
}

func TestReconciler_RefreshConnectors_FiltersPrivateAndDerivesStatus(t *testing.T) {
	r, cb, _ := newTestReconciler()
	public := activeRecord(2)
	public.AccessType = domain.AccessPublic
	scheduled := activeRecord(3)
	scheduled.LastFinishedStatus = nil
	scheduled.LastStatus = strPtr(domain.IndexAttemptNotStarted)
	cb.records = []domain.ConnectorStatusRecord{activeRecord(1), public, scheduled}

	require.NoError(t, r.RefreshConnectors(context.Background()))

	pairs := r.CCPairs()
	require.Len(t, pairs, 2)
	assert.Equal(t, domain.StatusActive, pairs[0].Status)
	assert.Equal(t, domain.StatusScheduled, pairs[1].Status)
	_, found := r.CCPair(2)
	assert.False(t, found)
}

func TestReconciler_RefreshConnectors_DropsConcurrentRequest(t *testing.T) {
	r, cb, _ := newTestReconciler()
	cb.gate = make(chan struct{})
	cb.records = []domain.ConnectorStatusRecord{activeRecord(1)}

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = r.RefreshConnectors(context.Background())
	}()
	require.True(t, eventually(func() bool { return cb.calls() == 1 }))

	err := r.RefreshConnectors(context.Background())
	assert.ErrorIs(t, err, domain.ErrRefreshInFlight)

	close(cb.gate)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, 1, cb.calls())
	assert.Len(t, r.CCPairs(), 1)

	// The guard is released afterwards.
	require.NoError(t, r.RefreshConnectors(context.Background()))
	assert.Equal(t, 2, cb.calls())
}

func TestReconciler_RefreshEntitlements_DropsConcurrentRequest(t *testing.T) {
	r, _, eb := newTestReconciler()
	eb.set(2, 5)
	eb.gate = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = r.RefreshEntitlements(context.Background())
	}()
	require.True(t, eventually(func() bool { return eb.callCount() == 1 }))

	err := r.RefreshEntitlements(context.Background())
	assert.ErrorIs(t, err, domain.ErrRefreshInFlight)

	close(eb.gate)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, 1, eb.callCount())
	require.NotNil(t, r.Entitlement())
	assert.Equal(t, 2, r.Entitlement().ConnectorsUsed)

	require.NoError(t, r.RefreshEntitlements(context.Background()))
	assert.Equal(t, 2, eb.callCount())
}

func TestReconciler_RefreshConnectors_KeepsStaleSnapshotOnError(t *testing.T) {
	r, cb, _ := newTestReconciler()
	cb.records = []domain.ConnectorStatusRecord{activeRecord(1)}
	require.NoError(t, r.RefreshConnectors(context.Background()))

	cb.listErr = errors.New("backend down")
	err := r.RefreshConnectors(context.Background())

	require.Error(t, err)
	assert.Len(t, r.CCPairs(), 1)
}

func TestReconciler_RefreshEntitlements_KeepsStaleSnapshotOnError(t *testing.T) {
	r, _, eb := newTestReconciler()
	assert.Nil(t, r.Entitlement())

	eb.set(1, 5)
	require.NoError(t, r.RefreshEntitlements(context.Background()))

	eb.err = errors.New("timeout")
	require.Error(t, r.RefreshEntitlements(context.Background()))

	ent := r.Entitlement()
	require.NotNil(t, ent)
	assert.Equal(t, 1, ent.ConnectorsUsed)
}

func TestReconciler_RefreshEntitlements_NilResponseIsError(t *testing.T) {
	r, _, _ := newTestReconciler()

	assert.Error(t, r.RefreshEntitlements(context.Background()))
	assert.Nil(t, r.Entitlement())
}

func TestReconciler_MarkIndexingUntilNextRefresh(t *testing.T) {
	r, cb, _ := newTestReconciler()
	cb.records = []domain.ConnectorStatusRecord{activeRecord(1)}
	require.NoError(t, r.RefreshConnectors(context.Background()))

	r.MarkIndexing(1)
	pair, _ := r.CCPair(1)
	assert.True(t, pair.Indexing)
	assert.False(t, domain.AllowedActions(pair).Index)

	require.NoError(t, r.RefreshConnectors(context.Background()))
	pair, _ = r.CCPair(1)
	assert.False(t, pair.Indexing)
}

func TestReconciler_Remove(t *testing.T) {
	r, cb, _ := newTestReconciler()
	cb.records = []domain.ConnectorStatusRecord{activeRecord(1), activeRecord(2)}
	require.NoError(t, r.RefreshConnectors(context.Background()))

	r.Remove(1)

	pairs := r.CCPairs()
	require.Len(t, pairs, 1)
	assert.Equal(t, 2, pairs[0].ID)
}

func TestReconciler_UpdatesSignal(t *testing.T) {
	r, cb, _ := newTestReconciler()
	cb.records = []domain.ConnectorStatusRecord{activeRecord(1)}

	require.NoError(t, r.RefreshConnectors(context.Background()))
	r.MarkIndexing(1)

	select {
	case <-r.Updates():
	default:
		t.Fatal("expected an update signal")
	}
	select {
	case <-r.Updates():
		t.Fatal("signals should coalesce")
	default:
	}
}

func TestReconciler_StartRefreshesOnMountAndStop(t *testing.T) {
	cb := newMockConnectorBackend()
	cb.records = []domain.ConnectorStatusRecord{activeRecord(1)}
	eb := &mockEntitlementBackend{}
	eb.set(0, 3)
	store := memory.NewActivityStore()
	r := NewReconciler(cb, eb, store, 20*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- r.Start(context.Background()) }()

	require.True(t, eventually(func() bool { return cb.calls() >= 2 }))
	require.True(t, eventually(func() bool { return r.Entitlement() != nil }))
	require.NoError(t, r.Stop())
	require.NoError(t, <-done)

	history, err := store.GetHistory(context.Background(), domain.ActivityConnectorRefresh, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, history)
	assert.True(t, history[0].Success)
	assert.Equal(t, 1, history[0].ItemsProcessed)
}

func TestReconciler_StartEndsWithContext(t *testing.T) {
	r, _, eb := newTestReconciler()
	eb.set(0, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.NoError(t, r.Stop())
}
