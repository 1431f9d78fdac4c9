package tui

import (
	"context"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-workspace/internal/core/services"
)

// MockReconciler implements driving.Reconciler for testing.
type MockReconciler struct {
	Pairs       []domain.CCPair
	Ent         *domain.Entitlement
	UpdatesChan chan struct{}
	Refreshes   int
}

func (m *MockReconciler) Start(context.Context) error { return nil }
func (m *MockReconciler) Stop() error                 { return nil }

func (m *MockReconciler) RefreshConnectors(context.Context) error {
	m.Refreshes++
	return nil
}

func (m *MockReconciler) RefreshEntitlements(context.Context) error { return nil }
func (m *MockReconciler) CCPairs() []domain.CCPair                  { return m.Pairs }

func (m *MockReconciler) CCPair(id int) (domain.CCPair, bool) {
	for _, p := range m.Pairs {
		if p.ID == id {
			return p, true
		}
	}
	return domain.CCPair{}, false
}

func (m *MockReconciler) Entitlement() *domain.Entitlement { return m.Ent }
func (m *MockReconciler) MarkIndexing(int)                 {}
func (m *MockReconciler) Remove(int)                       {}

func (m *MockReconciler) Updates() <-chan struct{} {
	if m.UpdatesChan == nil {
		return nil
	}
	return m.UpdatesChan
}

// MockConnectorService implements driving.ConnectorService for testing.
type MockConnectorService struct{}

func (m *MockConnectorService) Create(context.Context, driving.CreateRequest) (*domain.CCPair, error) {
	return &domain.CCPair{ID: 1}, nil
}

func (m *MockConnectorService) ExistingCredential(context.Context, string) (*domain.Credential, error) {
	return nil, nil
}

func (m *MockConnectorService) Index(context.Context, int, bool) error     { return nil }
func (m *MockConnectorService) SetPaused(context.Context, int, bool) error { return nil }
func (m *MockConnectorService) TogglePause(context.Context, int) error     { return nil }
func (m *MockConnectorService) Delete(context.Context, int) error          { return nil }

func (m *MockConnectorService) Actions(int) (domain.ActionSet, error) {
	return domain.ActionSet{}, nil
}

// MockDriveService implements driving.DriveService for testing.
type MockDriveService struct {
	Visible     bool
	VisibleSets int
}

func (m *MockDriveService) Path() string                            { return "/" }
func (m *MockDriveService) ChangeDir(context.Context, string) error { return nil }
func (m *MockDriveService) Refresh(context.Context) error           { return nil }
func (m *MockDriveService) Listing() []domain.DriveEntry            { return nil }
func (m *MockDriveService) Mkdir(context.Context, string) error     { return nil }

func (m *MockDriveService) Delete(context.Context, []string) (*domain.DeleteResult, error) {
	return &domain.DeleteResult{}, nil
}

func (m *MockDriveService) Upload(context.Context, []domain.UploadFile) (*domain.UploadResult, error) {
	return &domain.UploadResult{}, nil
}

func (m *MockDriveService) Uploads() []domain.UploadTask              { return nil }
func (m *MockDriveService) Indexing() map[string]domain.IndexingEntry { return nil }
func (m *MockDriveService) Notice() string                            { return "" }

func (m *MockDriveService) SetVisible(_ context.Context, visible bool) {
	m.Visible = visible
	m.VisibleSets++
}

func (m *MockDriveService) SyncNow(context.Context) error { return nil }
func (m *MockDriveService) SyncState() domain.SyncState   { return domain.SyncIdle }
func (m *MockDriveService) Close()                        {}

// newTestPorts returns ports backed by mocks and the built-in schemas.
func newTestPorts() (*Ports, *MockReconciler, *MockDriveService) {
	reconciler := &MockReconciler{}
	drive := &MockDriveService{}
	return &Ports{
		SchemaRegistry:  services.NewBuiltinSchemaRegistry(),
		FormInterpreter: services.NewFormInterpreter(),
		Reconciler:      reconciler,
		Connectors:      &MockConnectorService{},
		Drive:           drive,
	}, reconciler, drive
}
