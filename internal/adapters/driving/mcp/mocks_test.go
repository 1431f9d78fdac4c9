package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
)

// mockReconciler is a mock implementation of driving.Reconciler.
type mockReconciler struct {
	pairs       []domain.CCPair
	entitlement *domain.Entitlement
	refreshErr  error
	refreshes   int
	entRefresh  func() *domain.Entitlement
}

func (m *mockReconciler) Start(context.Context) error { return nil }
func (m *mockReconciler) Stop() error                 { return nil }

func (m *mockReconciler) RefreshConnectors(context.Context) error {
	m.refreshes++
	return m.refreshErr
}

func (m *mockReconciler) RefreshEntitlements(context.Context) error {
	if m.entRefresh != nil {
		m.entitlement = m.entRefresh()
	}
	return m.refreshErr
}

func (m *mockReconciler) CCPairs() []domain.CCPair { return m.pairs }

func (m *mockReconciler) CCPair(id int) (domain.CCPair, bool) {
	for _, p := range m.pairs {
		if p.ID == id {
			return p, true
		}
	}
	return domain.CCPair{}, false
}

func (m *mockReconciler) Entitlement() *domain.Entitlement { return m.entitlement }
func (m *mockReconciler) MarkIndexing(int)                 {}

func (m *mockReconciler) Remove(id int) {
	kept := m.pairs[:0]
	for _, p := range m.pairs {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.pairs = kept
}

func (m *mockReconciler) Updates() <-chan struct{} { return nil }

// mockConnectorService applies the real action guard to the mock reconciler.
type mockConnectorService struct {
	reconciler *mockReconciler
	calls      []string
}

func (m *mockConnectorService) Create(context.Context, driving.CreateRequest) (*domain.CCPair, error) {
	return nil, nil
}

func (m *mockConnectorService) ExistingCredential(context.Context, string) (*domain.Credential, error) {
	return nil, nil
}

func (m *mockConnectorService) guard(id int, action domain.Action) error {
	set, err := m.Actions(id)
	if err != nil {
		return err
	}
	return set.Check(action)
}

func (m *mockConnectorService) Index(_ context.Context, id int, fromBeginning bool) error {
	action := domain.ActionIndex
	if fromBeginning {
		action = domain.ActionFullReindex
	}
	if err := m.guard(id, action); err != nil {
		return err
	}
	m.calls = append(m.calls, string(action))
	return nil
}

func (m *mockConnectorService) SetPaused(context.Context, int, bool) error { return nil }

func (m *mockConnectorService) TogglePause(_ context.Context, id int) error {
	if err := m.guard(id, domain.ActionPauseOrResume); err != nil {
		return err
	}
	m.calls = append(m.calls, string(domain.ActionPauseOrResume))
	return nil
}

func (m *mockConnectorService) Delete(_ context.Context, id int) error {
	if err := m.guard(id, domain.ActionDelete); err != nil {
		return err
	}
	m.calls = append(m.calls, string(domain.ActionDelete))
	m.reconciler.Remove(id)
	return nil
}

func (m *mockConnectorService) Actions(id int) (domain.ActionSet, error) {
	pair, ok := m.reconciler.CCPair(id)
	if !ok {
		return domain.ActionSet{}, domain.ErrNotFound
	}
	return domain.AllowedActions(pair), nil
}

// mockDriveService is a mock implementation of driving.DriveService.
type mockDriveService struct {
	path    string
	entries []domain.DriveEntry
	err     error
}

func (m *mockDriveService) Path() string { return m.path }

func (m *mockDriveService) ChangeDir(_ context.Context, p string) error {
	if m.err != nil {
		return m.err
	}
	m.path = domain.CleanDrivePath(p)
	return nil
}

func (m *mockDriveService) Refresh(context.Context) error             { return m.err }
func (m *mockDriveService) Listing() []domain.DriveEntry              { return m.entries }
func (m *mockDriveService) Mkdir(context.Context, string) error       { return nil }
func (m *mockDriveService) Uploads() []domain.UploadTask              { return nil }
func (m *mockDriveService) Indexing() map[string]domain.IndexingEntry { return nil }
func (m *mockDriveService) Notice() string                            { return "" }
func (m *mockDriveService) SetVisible(context.Context, bool)          {}
func (m *mockDriveService) SyncNow(context.Context) error             { return nil }
func (m *mockDriveService) SyncState() domain.SyncState               { return domain.SyncIdle }
func (m *mockDriveService) Close()                                    {}

func (m *mockDriveService) Delete(context.Context, []string) (*domain.DeleteResult, error) {
	return &domain.DeleteResult{}, nil
}

func (m *mockDriveService) Upload(context.Context, []domain.UploadFile) (*domain.UploadResult, error) {
	return &domain.UploadResult{}, nil
}
