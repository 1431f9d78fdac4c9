package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-workspace/internal/logger"
)

// Ensure DriveService implements the interface.
var _ driving.DriveService = (*DriveService)(nil)

// UploadFailedNotice is shown when a whole upload batch fails.
const UploadFailedNotice = "Upload failed. Please try again."

// maxIndexingETA caps the speculative progress of a pending file.
const maxIndexingETA = 95

// DriveService owns the drive directory state. Uploads and the auto-sync
// loop share no lock; a fresh listing supersedes speculative indexing state.
type DriveService struct {
	backend        driven.DriveBackend
	quota          driving.QuotaGate
	activity       driven.ActivityStore
	hasCredentials func() bool
	interval       time.Duration
	now            func() time.Time

	uploading atomic.Bool
	ticking   atomic.Bool

	mu       sync.RWMutex
	path     string
	listing  []domain.DriveEntry
	uploads  []domain.UploadTask
	indexing map[string]domain.IndexingEntry
	notice   string
	state    domain.SyncState

	loopMu     sync.Mutex
	loopCancel context.CancelFunc
	loopDone   chan struct{}
}

// NewDriveService creates a drive service rooted at root.
// hasCredentials gates the auto-sync loop; activity may be nil.
func NewDriveService(
	backend driven.DriveBackend,
	quota driving.QuotaGate,
	activity driven.ActivityStore,
	hasCredentials func() bool,
	root string,
	interval time.Duration,
) *DriveService {
	if interval <= 0 {
		interval = domain.DefaultAutoSyncInterval
	}
	if hasCredentials == nil {
		hasCredentials = func() bool { return true }
	}
	return &DriveService{
		backend:        backend,
		quota:          quota,
		activity:       activity,
		hasCredentials: hasCredentials,
		interval:       interval,
		now:            time.Now,
		path:           domain.CleanDrivePath(root),
		indexing:       make(map[string]domain.IndexingEntry),
		state:          domain.SyncIdle,
	}
}

// Path returns the current directory.
func (d *DriveService) Path() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.path
}

// ChangeDir switches to path and lists it. The current directory only
// changes when the listing succeeds.
func (d *DriveService) ChangeDir(ctx context.Context, path string) error {
	path = domain.CleanDrivePath(path)
	entries, err := d.backend.List(ctx, path)
	if err != nil {
		return fmt.Errorf("list %s: %w", path, err)
	}
	d.mu.Lock()
	d.path = path
	d.applyListingLocked(path, entries)
	d.mu.Unlock()
	return nil
}

// Refresh re-lists the current directory.
func (d *DriveService) Refresh(ctx context.Context) error {
	return d.ChangeDir(ctx, d.Path())
}

// Listing returns a copy of the last listing.
func (d *DriveService) Listing() []domain.DriveEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.DriveEntry, len(d.listing))
	copy(out, d.listing)
	return out
}

// applyListingLocked stores a listing of dir and settles the indexing entries
// it covers: files reported as indexed are done, and pending files the
// listing no longer contains become unknown.
func (d *DriveService) applyListingLocked(dir string, entries []domain.DriveEntry) {
	d.listing = entries
	listed := make(map[string]bool, len(entries))
	for _, e := range entries {
		listed[e.Path] = true
		if entry, ok := d.indexing[e.Path]; ok && e.Indexed {
			entry.Status = domain.IndexingDone
			entry.ETAPercent = 100
			entry.DurationMs = d.now().Sub(entry.StartedAt).Milliseconds()
			d.indexing[e.Path] = entry
		}
	}
	for p, entry := range d.indexing {
		if entry.Status != domain.IndexingPending || listed[p] || domain.DriveDir(p) != dir {
			continue
		}
		entry.Status = domain.IndexingUnknown
		entry.ETAPercent = 0
		entry.DurationMs = d.now().Sub(entry.StartedAt).Milliseconds()
		d.indexing[p] = entry
	}
}

// Mkdir creates a directory under the current path and re-lists.
func (d *DriveService) Mkdir(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("%w: directory name is required", domain.ErrInvalidInput)
	}
	target := domain.JoinDrivePath(d.Path(), name)
	if err := d.backend.Mkdir(ctx, target); err != nil {
		return fmt.Errorf("mkdir %s: %w", target, err)
	}
	return d.Refresh(ctx)
}

// Delete removes entries. A partial result still re-lists and is not an error.
func (d *DriveService) Delete(ctx context.Context, paths []string) (*domain.DeleteResult, error) {
	if len(paths) == 0 {
		return &domain.DeleteResult{}, nil
	}
	result, err := d.backend.Delete(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	if result.Partial {
		logger.Warn("drive: partial delete, %d failed", len(result.Failed))
	}
	d.mu.Lock()
	for _, p := range paths {
		delete(d.indexing, domain.CleanDrivePath(p))
	}
	d.mu.Unlock()
	if err := d.Refresh(ctx); err != nil {
		logger.Warn("drive: re-list after delete failed: %v", err)
	}
	return result, nil
}

// Upload sends a batch in one request. Tasks exist only while the batch runs.
func (d *DriveService) Upload(ctx context.Context, files []domain.UploadFile) (*domain.UploadResult, error) {
	if len(files) == 0 {
		return &domain.UploadResult{}, nil
	}
	if d.quota != nil {
		if decision := d.quota.CheckUpload(ctx); decision.Blocked {
			return nil, &domain.QuotaError{Decision: decision}
		}
	}
	if !d.uploading.CompareAndSwap(false, true) {
		return nil, domain.ErrUploadInProgress
	}
	defer d.uploading.Store(false)

	started := d.now()
	dir := d.Path()

	tasks := make([]domain.UploadTask, len(files))
	for i, f := range files {
		tasks[i] = domain.UploadTask{Filename: f.Name}
	}
	d.mu.Lock()
	d.uploads = tasks
	d.notice = ""
	d.mu.Unlock()
	defer d.clearUploads()

	result, err := d.backend.Upload(ctx, dir, files, d.setProgress)
	d.recordUpload(ctx, started, len(files), result, err)
	if err != nil {
		d.mu.Lock()
		d.notice = UploadFailedNotice
		d.mu.Unlock()
		return nil, fmt.Errorf("upload: %w", err)
	}

	failed := make(map[string]bool, len(result.Failed))
	for _, name := range result.Failed {
		failed[name] = true
	}
	d.mu.Lock()
	for _, f := range files {
		if failed[f.Name] {
			continue
		}
		d.indexing[domain.JoinDrivePath(dir, f.Name)] = domain.IndexingEntry{
			Status:    domain.IndexingPending,
			StartedAt: started,
			Size:      f.Size,
		}
	}
	d.mu.Unlock()

	if err := d.Refresh(ctx); err != nil {
		logger.Warn("drive: re-list after upload failed: %v", err)
	}
	return result, nil
}

func (d *DriveService) setProgress(index, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if index >= 0 && index < len(d.uploads) {
		d.uploads[index].ProgressPercent = percent
	}
}

func (d *DriveService) clearUploads() {
	d.mu.Lock()
	d.uploads = nil
	d.mu.Unlock()
}

// Uploads returns a copy of the active batch's tasks.
func (d *DriveService) Uploads() []domain.UploadTask {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.UploadTask, len(d.uploads))
	copy(out, d.uploads)
	return out
}

// Indexing returns the indexing entries with pending ETAs advanced to now.
// The estimate grows with elapsed time relative to file size and stops short
// of completion until a listing confirms it.
func (d *DriveService) Indexing() map[string]domain.IndexingEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	now := d.now()
	out := make(map[string]domain.IndexingEntry, len(d.indexing))
	for k, e := range d.indexing {
		if e.Status == domain.IndexingPending {
			e.DurationMs = now.Sub(e.StartedAt).Milliseconds()
			e.ETAPercent = estimateETA(e.DurationMs, e.Size)
		}
		out[k] = e
	}
	return out
}

// estimateETA assumes roughly one second per megabyte with a five second floor.
func estimateETA(elapsedMs, size int64) int {
	expected := size / 1000
	if expected < 5000 {
		expected = 5000
	}
	pct := int(elapsedMs * 100 / expected)
	if pct > maxIndexingETA {
		return maxIndexingETA
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// Notice returns the last batch-level failure notice.
func (d *DriveService) Notice() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.notice
}

// SyncState returns the outcome of the last auto-sync tick.
func (d *DriveService) SyncState() domain.SyncState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

func (d *DriveService) setState(s domain.SyncState) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

// SetVisible cancels any running loop and, when visible with credentials,
// starts a new one. It never waits for an in-flight sync request: the
// cancelled request unwinds in the background and ticks never overlap.
func (d *DriveService) SetVisible(ctx context.Context, visible bool) {
	d.loopMu.Lock()
	defer d.loopMu.Unlock()

	d.cancelLoopLocked()
	if !visible {
		return
	}
	if !d.hasCredentials() {
		logger.Debug("drive: auto-sync not started, no credentials")
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	d.loopCancel = cancel
	d.loopDone = done
	go d.syncLoop(loopCtx, done)
}

// Close stops the auto-sync loop and waits for it to exit.
func (d *DriveService) Close() {
	d.loopMu.Lock()
	done := d.loopDone
	d.cancelLoopLocked()
	d.loopMu.Unlock()
	if done != nil {
		<-done
	}
}

func (d *DriveService) cancelLoopLocked() {
	if d.loopCancel == nil {
		return
	}
	d.loopCancel()
	d.loopCancel = nil
	d.loopDone = nil
}

func (d *DriveService) syncLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.syncTick(ctx)
		}
	}
}

// syncTick runs one sync request. Failure is reflected in the state only.
// A tick is skipped while a previous loop's request is still unwinding.
func (d *DriveService) syncTick(ctx context.Context) {
	if !d.ticking.CompareAndSwap(false, true) {
		return
	}
	defer d.ticking.Store(false)
	if err := d.SyncNow(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("drive: sync tick failed: %v", err)
	}
}

// SyncNow runs one sync request and moves the state through syncing to
// success or error. A cancelled request leaves the state idle.
func (d *DriveService) SyncNow(ctx context.Context) error {
	started := d.now()
	d.setState(domain.SyncSyncing)
	err := d.backend.Sync(ctx)
	switch {
	case err == nil:
		d.setState(domain.SyncSuccess)
	case errors.Is(err, context.Canceled):
		d.setState(domain.SyncIdle)
		return err
	default:
		d.setState(domain.SyncError)
	}
	d.record(ctx, &domain.ActivityResult{
		Kind:      domain.ActivityAutoSync,
		StartedAt: started,
	}, 0, err)
	return err
}

func (d *DriveService) recordUpload(ctx context.Context, started time.Time, n int, result *domain.UploadResult, err error) {
	items := n
	if result != nil {
		items -= len(result.Failed)
	}
	if err != nil {
		items = 0
	}
	d.record(ctx, &domain.ActivityResult{
		Kind:      domain.ActivityUpload,
		StartedAt: started,
	}, items, err)
}

func (d *DriveService) record(ctx context.Context, result *domain.ActivityResult, items int, err error) {
	if d.activity == nil {
		return
	}
	result.EndedAt = d.now()
	result.ItemsProcessed = items
	result.Success = err == nil
	if err != nil {
		result.Error = err.Error()
	}
	if recordErr := d.activity.RecordResult(ctx, result); recordErr != nil {
		logger.Warn("drive: failed to record %s: %v", result.Kind, recordErr)
	}
}
