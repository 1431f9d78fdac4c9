package connectors

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
)

// mockReconciler implements driving.Reconciler for testing.
type mockReconciler struct {
	pairs       []domain.CCPair
	entitlement *domain.Entitlement
	refreshErr  error
	refreshes   int
}

func (m *mockReconciler) Start(context.Context) error { return nil }
func (m *mockReconciler) Stop() error                 { return nil }

func (m *mockReconciler) RefreshConnectors(context.Context) error {
	m.refreshes++
	return m.refreshErr
}

func (m *mockReconciler) RefreshEntitlements(context.Context) error { return nil }
func (m *mockReconciler) CCPairs() []domain.CCPair                  { return append([]domain.CCPair(nil), m.pairs...) }

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
func (m *mockReconciler) Remove(int)                       {}
func (m *mockReconciler) Updates() <-chan struct{}         { return nil }

// mockConnectorService implements driving.ConnectorService for testing.
type mockConnectorService struct {
	reconciler *mockReconciler
	calls      []string
	err        error
}

func (m *mockConnectorService) Create(context.Context, driving.CreateRequest) (*domain.CCPair, error) {
	return nil, nil
}

func (m *mockConnectorService) ExistingCredential(context.Context, string) (*domain.Credential, error) {
	return nil, nil
}

func (m *mockConnectorService) Index(_ context.Context, _ int, fromBeginning bool) error {
	if fromBeginning {
		m.calls = append(m.calls, "reindex")
	} else {
		m.calls = append(m.calls, "index")
	}
	return m.err
}

func (m *mockConnectorService) SetPaused(context.Context, int, bool) error { return m.err }

func (m *mockConnectorService) TogglePause(context.Context, int) error {
	m.calls = append(m.calls, "toggle")
	return m.err
}

func (m *mockConnectorService) Delete(context.Context, int) error {
	m.calls = append(m.calls, "delete")
	return m.err
}

func (m *mockConnectorService) Actions(id int) (domain.ActionSet, error) {
	p, ok := m.reconciler.CCPair(id)
	if !ok {
		return domain.ActionSet{}, domain.ErrNotFound
	}
	return domain.AllowedActions(p), nil
}

// mockQuota implements driving.QuotaGate for testing.
type mockQuota struct {
	open domain.QuotaDecision
}

func (m *mockQuota) CheckOpen() domain.QuotaDecision                  { return m.open }
func (m *mockQuota) CheckSubmit(context.Context) domain.QuotaDecision { return domain.QuotaDecision{} }
func (m *mockQuota) CheckUpload(context.Context) domain.QuotaDecision { return domain.QuotaDecision{} }

func newTestView(pairs ...domain.CCPair) (*View, *mockReconciler, *mockConnectorService, *mockQuota) {
	rec := &mockReconciler{
		pairs:       pairs,
		entitlement: &domain.Entitlement{ConnectorsUsed: len(pairs), ConnectorsLimit: 5, StorageGB: 10},
	}
	svc := &mockConnectorService{reconciler: rec}
	quota := &mockQuota{}
	v := NewView(nil, rec, svc, quota)
	v.SetDimensions(100, 30)
	return v, rec, svc, quota
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func active(id int, name string) domain.CCPair {
	return domain.CCPair{ID: id, Name: name, Source: "web", Status: domain.StatusActive}
}

func TestNewView_NilStyles(t *testing.T) {
	v := NewView(nil, nil, nil, nil)

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.Nil(t, v.Init())
}

func TestView_InitLoadsSnapshotAndRefreshes(t *testing.T) {
	v, rec, _, _ := newTestView(active(1, "Docs"), active(2, "Wiki"))

	cmd := v.Init()

	assert.Len(t, v.Pairs(), 2)
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, 1, rec.refreshes)
}

func TestView_RefreshInFlightIsNotAnError(t *testing.T) {
	v, rec, _, _ := newTestView()
	rec.refreshErr = domain.ErrRefreshInFlight

	assert.Nil(t, v.Init()())

	rec.refreshErr = errors.New("down")
	msg := v.Init()()
	assert.IsType(t, messages.ErrorOccurred{}, msg)
}

func TestView_UpdatesReloadSnapshot(t *testing.T) {
	v, rec, _, _ := newTestView(active(1, "Docs"))
	v.Init()

	rec.pairs = append(rec.pairs, active(2, "Wiki"))
	v.Update(messages.ConnectorsUpdated{})

	assert.Len(t, v.Pairs(), 2)
}

func TestView_SelectionClampedAfterRemoval(t *testing.T) {
	v, rec, _, _ := newTestView(active(1, "Docs"), active(2, "Wiki"))
	v.Init()
	v.Update(key("j"))

	rec.pairs = rec.pairs[:1]
	v.Update(messages.ConnectorsUpdated{})

	p, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, 1, p.ID)
}

func TestView_Navigation(t *testing.T) {
	v, _, _, _ := newTestView(active(1, "Docs"), active(2, "Wiki"))
	v.Init()

	v.Update(key("j"))
	v.Update(key("j"))
	p, _ := v.Selected()
	assert.Equal(t, 2, p.ID)

	v.Update(key("k"))
	p, _ = v.Selected()
	assert.Equal(t, 1, p.ID)
}

func TestView_IndexRunsWhenAllowed(t *testing.T) {
	v, _, svc, _ := newTestView(active(1, "Docs"))
	v.Init()

	_, cmd := v.Update(key("i"))
	require.NotNil(t, cmd)
	msg := cmd()

	done, ok := msg.(messages.ConnectorActionDone)
	require.True(t, ok)
	assert.Equal(t, domain.ActionIndex, done.Action)
	assert.Equal(t, []string{"index"}, svc.calls)

	v.Update(done)
	assert.Equal(t, status.StateNotice, v.Status().State())
	assert.Equal(t, "Indexing started", v.Status().Message())
}

func TestView_BlockedActionShowsReasonWithoutCall(t *testing.T) {
	v, _, svc, _ := newTestView(domain.CCPair{ID: 1, Name: "Docs", Status: domain.StatusScheduled})
	v.Init()

	_, cmd := v.Update(key("r"))

	assert.Nil(t, cmd)
	assert.Empty(t, svc.calls)
	assert.Equal(t, status.StateError, v.Status().State())
	assert.Equal(t, domain.ReasonNotActive, v.Status().Message())
}

func TestView_DeleteRequiresPausedAndConfirmation(t *testing.T) {
	v, rec, svc, _ := newTestView(active(1, "Docs"))
	v.Init()

	_, cmd := v.Update(key("d"))
	assert.Nil(t, cmd)
	assert.Equal(t, domain.ReasonDeleteNotPause, v.Status().Message())

	rec.pairs[0].Status = domain.StatusPaused
	v.Update(messages.ConnectorsUpdated{})

	_, cmd = v.Update(key("d"))
	assert.Nil(t, cmd)
	assert.Contains(t, v.Status().Message(), "Delete")

	_, cmd = v.Update(key("y"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"delete"}, svc.calls)
}

func TestView_DeleteCancelled(t *testing.T) {
	v, _, svc, _ := newTestView(domain.CCPair{ID: 1, Name: "Docs", Status: domain.StatusPaused})
	v.Init()

	v.Update(key("d"))
	_, cmd := v.Update(key("n"))

	assert.Nil(t, cmd)
	assert.Empty(t, svc.calls)
	assert.Equal(t, status.StateReady, v.Status().State())
}

func TestView_PauseToggle(t *testing.T) {
	v, _, svc, _ := newTestView(active(1, "Docs"))
	v.Init()

	_, cmd := v.Update(key("p"))
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []string{"toggle"}, svc.calls)
}

func TestView_ActionFailureShowsUserMessage(t *testing.T) {
	v, _, _, _ := newTestView(active(1, "Docs"))
	v.Init()

	v.Update(messages.ConnectorActionDone{
		CCPairID: 1,
		Action:   domain.ActionIndex,
		Err:      &domain.APIError{StatusCode: 400, Detail: "Connector is busy"},
	})

	assert.Equal(t, status.StateError, v.Status().State())
	assert.Equal(t, "Connector is busy", v.Status().Message())
}

func TestView_AddBlockedByQuota(t *testing.T) {
	v, _, _, quota := newTestView()
	quota.open = domain.QuotaDecision{Blocked: true, Message: "You have used 5/5 connectors."}

	_, cmd := v.Update(key("a"))

	assert.Nil(t, cmd)
	assert.Equal(t, "You have used 5/5 connectors.", v.Status().Message())
}

func TestView_AddOpensDialog(t *testing.T) {
	v, _, _, _ := newTestView()

	_, cmd := v.Update(key("a"))

	require.NotNil(t, cmd)
	assert.Equal(t, messages.AddConnectorRequested{}, cmd())
}

func TestView_EscGoesToMenu(t *testing.T) {
	v, _, _, _ := newTestView()

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_Render(t *testing.T) {
	v, _, _, _ := newTestView(active(1, "Docs"), domain.CCPair{ID: 2, Name: "Wiki", Source: "confluence", Status: domain.StatusPaused})
	v.Init()

	out := v.View()

	assert.Contains(t, out, "Connectors")
	assert.Contains(t, out, "Connectors 2/5")
	assert.Contains(t, out, "Docs")
	assert.Contains(t, out, "Wiki")
	assert.Contains(t, out, "Paused")
	assert.Contains(t, out, "[i] index")
}

func TestView_RenderEmpty(t *testing.T) {
	v, rec, _, _ := newTestView()
	rec.entitlement = nil
	v.Init()

	out := v.View()

	assert.Contains(t, out, "No connectors yet")
	assert.Contains(t, out, "Usage unavailable")
}
