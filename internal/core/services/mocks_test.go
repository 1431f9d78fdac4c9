package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driven"
)

// --- Mock implementations for service testing ---

// mockConnectorBackend implements driven.ConnectorBackend.
type mockConnectorBackend struct {
	mu sync.Mutex

	records []domain.ConnectorStatusRecord
	creds   []domain.Credential
	listErr error

	// gate blocks ListConnectorStatus until closed when non-nil.
	gate chan struct{}

	listCalls   int
	credCreates []driven.CredentialCreate
	connCreates []driven.ConnectorCreate
	pairCreates []driven.CCPairCreate
	indexCalls  []driven.IndexRequest
	statusCalls []domain.CCPairStatus
	deleteCalls []int
	createErr   error
	actionErr   error
	nextID      int
}

func newMockConnectorBackend() *mockConnectorBackend {
	return &mockConnectorBackend{nextID: 100}
}

func (m *mockConnectorBackend) ListConnectorStatus(ctx context.Context) ([]domain.ConnectorStatusRecord, error) {
	m.mu.Lock()
	m.listCalls++
	gate := m.gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.ConnectorStatusRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *mockConnectorBackend) ListCredentials(_ context.Context, source string) ([]domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Credential
	for _, c := range m.creds {
		if c.Source == source {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockConnectorBackend) id() int {
	m.nextID++
	return m.nextID
}

func (m *mockConnectorBackend) CreateCredential(_ context.Context, req driven.CredentialCreate) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.credCreates = append(m.credCreates, req)
	return m.id(), nil
}

func (m *mockConnectorBackend) CreateConnector(_ context.Context, req driven.ConnectorCreate) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.connCreates = append(m.connCreates, req)
	return m.id(), nil
}

func (m *mockConnectorBackend) CreateCCPair(_ context.Context, req driven.CCPairCreate) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.pairCreates = append(m.pairCreates, req)
	return m.id(), nil
}

func (m *mockConnectorBackend) TriggerIndex(_ context.Context, _ int, req driven.IndexRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.actionErr != nil {
		return m.actionErr
	}
	m.indexCalls = append(m.indexCalls, req)
	return nil
}

func (m *mockConnectorBackend) SetCCPairStatus(_ context.Context, _ int, status domain.CCPairStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.actionErr != nil {
		return m.actionErr
	}
	m.statusCalls = append(m.statusCalls, status)
	return nil
}

func (m *mockConnectorBackend) DeleteCCPair(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.actionErr != nil {
		return m.actionErr
	}
	m.deleteCalls = append(m.deleteCalls, id)
	return nil
}

func (m *mockConnectorBackend) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

// mockEntitlementBackend implements driven.EntitlementBackend.
type mockEntitlementBackend struct {
	mu    sync.Mutex
	ent   *domain.Entitlement
	err   error
	calls int

	// gate blocks GetEntitlements until closed when non-nil.
	gate chan struct{}
}

func (m *mockEntitlementBackend) GetEntitlements(ctx context.Context) (*domain.Entitlement, error) {
	m.mu.Lock()
	m.calls++
	gate := m.gate
	m.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.ent == nil {
		return nil, nil
	}
	e := *m.ent
	return &e, nil
}

func (m *mockEntitlementBackend) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockEntitlementBackend) set(used, limit int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ent = &domain.Entitlement{ConnectorsUsed: used, ConnectorsLimit: limit, StorageGB: -1}
}

// mockDriveBackend implements driven.DriveBackend.
type mockDriveBackend struct {
	mu sync.Mutex

	entries   map[string][]domain.DriveEntry
	listErr   error
	uploadErr error
	partial   []string
	deleteRes *domain.DeleteResult
	syncErr   error

	listCalls  int
	syncCalls  int
	mkdirs     []string
	uploadDirs []string

	// uploadHook runs inside Upload, after progress is reported.
	uploadHook func()
	// syncHook runs inside Sync and its error is returned when non-nil.
	syncHook func(ctx context.Context) error
}

func newMockDriveBackend() *mockDriveBackend {
	return &mockDriveBackend{entries: make(map[string][]domain.DriveEntry)}
}

func (m *mockDriveBackend) List(_ context.Context, path string) ([]domain.DriveEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.entries[path], nil
}

func (m *mockDriveBackend) Mkdir(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirs = append(m.mkdirs, path)
	return nil
}

func (m *mockDriveBackend) Upload(
	_ context.Context,
	dir string,
	files []domain.UploadFile,
	progress driven.UploadProgressFunc,
) (*domain.UploadResult, error) {
	m.mu.Lock()
	m.uploadDirs = append(m.uploadDirs, dir)
	hook := m.uploadHook
	uploadErr := m.uploadErr
	partial := m.partial
	m.mu.Unlock()

	for i := range files {
		progress(i, 50)
	}
	if hook != nil {
		hook()
	}
	if uploadErr != nil {
		return nil, uploadErr
	}

	rejected := make(map[string]bool, len(partial))
	for _, name := range partial {
		rejected[name] = true
	}
	m.mu.Lock()
	for _, f := range files {
		if !rejected[f.Name] {
			m.entries[dir] = append(m.entries[dir], domain.DriveEntry{Path: domain.JoinDrivePath(dir, f.Name), Name: f.Name})
		}
	}
	m.mu.Unlock()

	if len(partial) > 0 {
		return &domain.UploadResult{Partial: true, Failed: partial}, nil
	}
	return &domain.UploadResult{}, nil
}

func (m *mockDriveBackend) Delete(_ context.Context, _ []string) (*domain.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteRes != nil {
		return m.deleteRes, nil
	}
	return &domain.DeleteResult{}, nil
}

func (m *mockDriveBackend) Sync(ctx context.Context) error {
	m.mu.Lock()
	m.syncCalls++
	hook := m.syncHook
	syncErr := m.syncErr
	m.mu.Unlock()
	if hook != nil {
		if err := hook(ctx); err != nil {
			return err
		}
	}
	return syncErr
}

func (m *mockDriveBackend) syncs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncCalls
}

// mockQuotaGate implements driving.QuotaGate with fixed decisions.
type mockQuotaGate struct {
	openBlocked, submitBlocked, uploadBlocked bool
}

func (m *mockQuotaGate) CheckOpen() domain.QuotaDecision {
	return domain.QuotaDecision{Checkpoint: domain.CheckpointOpen, Blocked: m.openBlocked, Message: "blocked"}
}

func (m *mockQuotaGate) CheckSubmit(context.Context) domain.QuotaDecision {
	return domain.QuotaDecision{Checkpoint: domain.CheckpointSubmit, Blocked: m.submitBlocked, Message: "blocked"}
}

func (m *mockQuotaGate) CheckUpload(context.Context) domain.QuotaDecision {
	return domain.QuotaDecision{Checkpoint: domain.CheckpointUpload, Blocked: m.uploadBlocked, Message: "storage full"}
}

// --- record helpers ---

func strPtr(s string) *string { return &s }

func activeRecord(id int) domain.ConnectorStatusRecord {
	return domain.ConnectorStatusRecord{
		CCPairID:           id,
		Name:               "pair",
		Connector:          domain.ConnectorRef{ID: id * 10, Source: "web"},
		CredentialID:       id * 100,
		AccessType:         domain.AccessPrivate,
		PairStatus:         domain.StatusActive,
		LastFinishedStatus: strPtr("success"),
		LastStatus:         strPtr("success"),
	}
}

// eventually polls cond for up to a second.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
