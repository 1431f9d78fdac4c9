package backend

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driven"
)

// Drive API paths.
const (
	pathDriveList   = "/drive/list"
	pathDriveMkdir  = "/drive/mkdir"
	pathDriveUpload = "/drive/upload"
	pathDriveDelete = "/drive/delete"
	pathDriveSync   = "/drive/sync"
)

// multiStatus is the body of a 207 answer.
type multiStatus struct {
	Failed []string `json:"failed"`
}

// List returns a directory listing.
func (c *Client) List(ctx context.Context, path string) ([]domain.DriveEntry, error) {
	q := url.Values{}
	q.Set("path", domain.CleanDrivePath(path))
	var out struct {
		Entries []domain.DriveEntry `json:"entries"`
	}
	if _, err := c.doJSON(ctx, http.MethodGet, pathDriveList+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// Mkdir creates a directory.
func (c *Client) Mkdir(ctx context.Context, path string) error {
	body := struct {
		Path string `json:"path"`
	}{Path: domain.CleanDrivePath(path)}
	_, err := c.doJSON(ctx, http.MethodPost, pathDriveMkdir, body, nil)
	return err
}

// Delete removes paths. A 207 answer reports the paths that survived.
func (c *Client) Delete(ctx context.Context, paths []string) (*domain.DeleteResult, error) {
	body := struct {
		Paths []string `json:"paths"`
	}{Paths: paths}
	var out multiStatus
	code, err := c.doJSON(ctx, http.MethodDelete, pathDriveDelete, body, &out, http.StatusMultiStatus)
	if err != nil {
		return nil, err
	}
	return &domain.DeleteResult{Partial: code == http.StatusMultiStatus, Failed: out.Failed}, nil
}

// Sync asks the backend to mirror the drive into ingestion.
func (c *Client) Sync(ctx context.Context) error {
	_, err := c.doJSON(ctx, http.MethodPost, pathDriveSync, nil, nil)
	return err
}

// Upload streams every file as one multipart request. Progress is reported
// per file as its bytes are handed to the transport.
func (c *Client) Upload(
	ctx context.Context,
	dir string,
	files []domain.UploadFile,
	progress driven.UploadProgressFunc,
) (*domain.UploadResult, error) {
	if progress == nil {
		progress = func(int, int) {}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeParts(mw, files, progress))
	}()

	q := url.Values{}
	q.Set("path", domain.CleanDrivePath(dir))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathDriveUpload+"?"+q.Encode(), pr)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	status, payload, err := c.send(req)
	_ = pr.Close()
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", pathDriveUpload, err)
	}

	switch {
	case status.code == http.StatusMultiStatus:
		var out multiStatus
		_ = jsonUnmarshal(payload, &out)
		return &domain.UploadResult{Partial: true, Failed: out.Failed}, nil
	case status.code >= 200 && status.code <= 299:
		return &domain.UploadResult{}, nil
	default:
		return nil, apiError(status.code, payload)
	}
}

// writeParts writes one "files" part per upload and closes the form.
func writeParts(mw *multipart.Writer, files []domain.UploadFile, progress driven.UploadProgressFunc) error {
	for i, f := range files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return err
		}
		w := &progressWriter{w: part, total: f.Size, report: func(pct int) { progress(i, pct) }}
		if _, err := io.Copy(w, f.Content); err != nil {
			return fmt.Errorf("read %s: %w", f.Name, err)
		}
		progress(i, 100)
	}
	return mw.Close()
}

// progressWriter reports the percentage of total written so far. Reports are
// only emitted when the percentage changes, and never reach 100 before the
// copy finishes.
type progressWriter struct {
	w       io.Writer
	total   int64
	written int64
	last    int
	report  func(int)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.total > 0 {
		pct := int(p.written * 100 / p.total)
		if pct > 99 {
			pct = 99
		}
		if pct > p.last {
			p.last = pct
			p.report(pct)
		}
	}
	return n, err
}
