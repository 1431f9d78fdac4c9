package driving

import (
	"context"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

// DriveService manages the drive namespace: listings, uploads and the
// visibility-aware auto-sync loop.
type DriveService interface {
	// Path returns the current directory.
	Path() string

	// ChangeDir switches directory and lists it.
	ChangeDir(ctx context.Context, path string) error

	// Refresh re-lists the current directory.
	Refresh(ctx context.Context) error

	// Listing returns the last successful listing.
	Listing() []domain.DriveEntry

	// Mkdir creates a directory under the current path.
	Mkdir(ctx context.Context, name string) error

	// Delete removes entries; partial success is not an error.
	Delete(ctx context.Context, paths []string) (*domain.DeleteResult, error)

	// Upload sends a batch into the current directory.
	Upload(ctx context.Context, files []domain.UploadFile) (*domain.UploadResult, error)

	// Uploads returns the tasks of the active batch.
	Uploads() []domain.UploadTask

	// Indexing returns the speculative ingestion state of uploaded files.
	Indexing() map[string]domain.IndexingEntry

	// Notice returns the last batch-level failure notice.
	Notice() string

	// SetVisible starts the auto-sync loop when visible and credentials
	// exist, and tears it down otherwise.
	SetVisible(ctx context.Context, visible bool)

	// SyncNow runs one sync request outside the loop and reports its error.
	SyncNow(ctx context.Context) error

	// SyncState returns the display status of the last auto-sync tick.
	SyncState() domain.SyncState

	// Close stops the auto-sync loop.
	Close()
}
