package domain

import (
	"io"
	"path"
	"strings"
	"time"
)

// DriveEntry is one item of a drive directory listing.
type DriveEntry struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	IsDir      bool      `json:"is_dir"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
	// Indexed is true once ingestion has picked the file up.
	Indexed bool `json:"indexed"`
}

// CleanDrivePath normalises a virtual drive path to an absolute, slash-separated form.
func CleanDrivePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// JoinDrivePath joins a directory and a name into a drive path.
func JoinDrivePath(dir, name string) string {
	return CleanDrivePath(path.Join(CleanDrivePath(dir), name))
}

// DriveDir returns the directory holding a drive path.
func DriveDir(p string) string {
	return path.Dir(CleanDrivePath(p))
}

// UploadFile is one file handed to an upload batch.
type UploadFile struct {
	Name    string
	Size    int64
	Content io.Reader
}

// UploadTask tracks the progress of one file within an active batch.
type UploadTask struct {
	Filename        string
	ProgressPercent int
}

// UploadResult is the backend's answer to a batch upload.
type UploadResult struct {
	// Partial is true for a multi-status response: some files failed.
	Partial bool
	// Failed lists the names of files the backend rejected.
	Failed []string
}

// DeleteResult is the backend's answer to a batch delete.
type DeleteResult struct {
	Partial bool
	Failed  []string
}

// IndexingStatus tracks whether a just-uploaded file has been ingested.
type IndexingStatus string

const (
	IndexingPending IndexingStatus = "pending"
	IndexingDone    IndexingStatus = "done"
	// IndexingUnknown marks a file a fresh listing of its directory no
	// longer reports. The estimate stops there.
	IndexingUnknown IndexingStatus = "unknown"
)

// IndexingEntry is a best-effort record of one uploaded file's ingestion.
// A fresh directory listing always supersedes it.
type IndexingEntry struct {
	Status     IndexingStatus
	ETAPercent int
	StartedAt  time.Time
	DurationMs int64
	Size       int64
}

// SyncState is the display status of the auto-sync loop.
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncSyncing SyncState = "syncing"
	SyncSuccess SyncState = "success"
	SyncError   SyncState = "error"
)
