package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-workspace/internal/logger"
)

// Ensure Reconciler implements the interface.
var _ driving.Reconciler = (*Reconciler)(nil)

// Reconciler owns the CCPair list and entitlement snapshot. It is the only
// writer of either collection; everything else reads copies.
type Reconciler struct {
	connectors   driven.ConnectorBackend
	entitlements driven.EntitlementBackend
	activity     driven.ActivityStore
	interval     time.Duration

	// One guard per collection. A refresh that finds its guard set is dropped.
	pairsInFlight atomic.Bool
	entInFlight   atomic.Bool

	dataMu      sync.RWMutex
	pairs       []domain.CCPair
	entitlement *domain.Entitlement

	updates chan struct{}

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewReconciler creates a reconciler. activity may be nil.
func NewReconciler(
	connectors driven.ConnectorBackend,
	entitlements driven.EntitlementBackend,
	activity driven.ActivityStore,
	interval time.Duration,
) *Reconciler {
	if interval <= 0 {
		interval = domain.DefaultPollInterval
	}
	return &Reconciler{
		connectors:   connectors,
		entitlements: entitlements,
		activity:     activity,
		interval:     interval,
		updates:      make(chan struct{}, 1),
	}
}

// Start refreshes both collections immediately and then on every tick.
// This method blocks until Stop is called or ctx is done.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.stopCh = make(chan struct{})
	stopCh := r.stopCh
	r.mu.Unlock()

	r.refreshBoth(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.markStopped()
			r.wg.Wait()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			r.refreshBoth(ctx)
		}
	}
}

// Stop ends the loop and waits for running refreshes.
func (r *Reconciler) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	close(r.stopCh)
	r.mu.Unlock()

	r.wg.Wait()
	return nil
}

func (r *Reconciler) markStopped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
}

// refreshBoth launches both refreshes without ordering between them.
// Errors are already logged by the refresh methods.
func (r *Reconciler) refreshBoth(ctx context.Context) {
	r.wg.Add(2)
	go func() {
		defer r.wg.Done()
		_ = r.RefreshConnectors(ctx)
	}()
	go func() {
		defer r.wg.Done()
		_ = r.RefreshEntitlements(ctx)
	}()
}

// RefreshConnectors fetches the CCPair list, keeps private pairs only and
// derives each status. On failure the previous list is retained.
func (r *Reconciler) RefreshConnectors(ctx context.Context) error {
	if !r.pairsInFlight.CompareAndSwap(false, true) {
		logger.Debug("reconciler: connector refresh already in flight, dropped")
		return domain.ErrRefreshInFlight
	}
	defer r.pairsInFlight.Store(false)

	result := &domain.ActivityResult{
		Kind:      domain.ActivityConnectorRefresh,
		StartedAt: time.Now(),
	}

	records, err := r.connectors.ListConnectorStatus(ctx)
	if err != nil {
		logger.Warn("reconciler: connector refresh failed, keeping %d cached pairs: %v", len(r.CCPairs()), err)
		r.record(ctx, result, 0, err)
		return err
	}

	pairs := make([]domain.CCPair, 0, len(records))
	for i := range records {
		if records[i].AccessType != domain.AccessPrivate {
			continue
		}
		pairs = append(pairs, domain.CCPairFromRecord(&records[i]))
	}

	r.dataMu.Lock()
	r.pairs = pairs
	r.dataMu.Unlock()

	logger.Debug("reconciler: %d private pairs of %d records", len(pairs), len(records))
	r.record(ctx, result, len(pairs), nil)
	r.notify()
	return nil
}

// RefreshEntitlements fetches the entitlement snapshot. On failure the
// previous snapshot is retained.
func (r *Reconciler) RefreshEntitlements(ctx context.Context) error {
	if !r.entInFlight.CompareAndSwap(false, true) {
		logger.Debug("reconciler: entitlement refresh already in flight, dropped")
		return domain.ErrRefreshInFlight
	}
	defer r.entInFlight.Store(false)

	result := &domain.ActivityResult{
		Kind:      domain.ActivityEntitlementRefresh,
		StartedAt: time.Now(),
	}

	ent, err := r.entitlements.GetEntitlements(ctx)
	if err == nil && ent == nil {
		err = errors.New("empty entitlement response")
	}
	if err != nil {
		logger.Warn("reconciler: entitlement refresh failed, keeping cached snapshot: %v", err)
		r.record(ctx, result, 0, err)
		return err
	}

	snapshot := *ent
	r.dataMu.Lock()
	r.entitlement = &snapshot
	r.dataMu.Unlock()

	r.record(ctx, result, 1, nil)
	r.notify()
	return nil
}

// CCPairs returns a copy of the current list.
func (r *Reconciler) CCPairs() []domain.CCPair {
	r.dataMu.RLock()
	defer r.dataMu.RUnlock()
	out := make([]domain.CCPair, len(r.pairs))
	copy(out, r.pairs)
	return out
}

// CCPair returns one pair by id.
func (r *Reconciler) CCPair(id int) (domain.CCPair, bool) {
	r.dataMu.RLock()
	defer r.dataMu.RUnlock()
	for _, p := range r.pairs {
		if p.ID == id {
			return p, true
		}
	}
	return domain.CCPair{}, false
}

// Entitlement returns a copy of the snapshot, or nil before the first success.
func (r *Reconciler) Entitlement() *domain.Entitlement {
	r.dataMu.RLock()
	defer r.dataMu.RUnlock()
	if r.entitlement == nil {
		return nil
	}
	e := *r.entitlement
	return &e
}

// MarkIndexing sets the indexing flag on a pair. The next refresh replaces it
// with whatever the backend reports.
func (r *Reconciler) MarkIndexing(id int) {
	r.update(id, func(p *domain.CCPair) { p.Indexing = true })
}

// Remove drops a pair from the list.
func (r *Reconciler) Remove(id int) {
	r.dataMu.Lock()
	kept := r.pairs[:0:0]
	for _, p := range r.pairs {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	r.pairs = kept
	r.dataMu.Unlock()
	r.notify()
}

// Updates returns a channel that receives after each change. Signals
// coalesce; a slow reader sees at most one pending signal.
func (r *Reconciler) Updates() <-chan struct{} {
	return r.updates
}

func (r *Reconciler) update(id int, fn func(*domain.CCPair)) {
	r.dataMu.Lock()
	for i := range r.pairs {
		if r.pairs[i].ID == id {
			fn(&r.pairs[i])
		}
	}
	r.dataMu.Unlock()
	r.notify()
}

func (r *Reconciler) notify() {
	select {
	case r.updates <- struct{}{}:
	default:
	}
}

func (r *Reconciler) record(ctx context.Context, result *domain.ActivityResult, items int, err error) {
	if r.activity == nil {
		return
	}
	result.EndedAt = time.Now()
	result.ItemsProcessed = items
	result.Success = err == nil
	if err != nil {
		result.Error = err.Error()
	}
	if recordErr := r.activity.RecordResult(ctx, result); recordErr != nil {
		logger.Warn("reconciler: failed to record %s: %v", result.Kind, recordErr)
	}
	if pruneErr := r.activity.PruneHistory(ctx, domain.DefaultHistoryRetention); pruneErr != nil {
		logger.Warn("reconciler: failed to prune history: %v", pruneErr)
	}
}
