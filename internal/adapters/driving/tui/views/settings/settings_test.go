package settings

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

// MockSettingsService is a mock implementation of driving.SettingsService.
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get() (*domain.ClientSettings, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClientSettings), args.Error(1)
}

func (m *MockSettingsService) Save(settings *domain.ClientSettings) error {
	args := m.Called(settings)
	return args.Error(0)
}

func (m *MockSettingsService) SetBackend(url string) error {
	args := m.Called(url)
	return args.Error(0)
}

func (m *MockSettingsService) SetToken(token string) error {
	args := m.Called(token)
	return args.Error(0)
}

func testSettings() *domain.ClientSettings {
	s := domain.DefaultClientSettings()
	s.Backend.Token = "secret-token"
	return &s
}

func loadedView(t *testing.T, svc *MockSettingsService) *View {
	t.Helper()
	svc.On("Get").Return(testSettings(), nil)
	v := NewView(styles.DefaultStyles(), svc)
	v.SetDimensions(100, 30)
	v.Update(v.Init()())
	require.NotNil(t, v.Settings())
	return v
}

func TestNewView_NilStyles(t *testing.T) {
	v := NewView(nil, nil)

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.Equal(t, SectionOverview, v.Section())
}

func TestInit_NoService(t *testing.T) {
	v := NewView(nil, nil)

	v.Update(v.Init()())

	assert.Error(t, v.Err())
}

func TestView_OverviewMasksToken(t *testing.T) {
	v := loadedView(t, &MockSettingsService{})

	out := v.View()

	assert.Contains(t, out, domain.DefaultBackendURL)
	assert.Contains(t, out, "********oken")
	assert.NotContains(t, out, "secret-token")
}

func TestSetBackend(t *testing.T) {
	svc := &MockSettingsService{}
	v := loadedView(t, svc)
	svc.On("SetBackend", "https://search.example.com/api").Return(nil)

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, SectionBackend, v.Section())

	v.backendInput.SetValue("https://search.example.com/api")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, cmd = v.Update(cmd())

	assert.Equal(t, SectionOverview, v.Section())
	assert.NotNil(t, cmd)
	assert.Contains(t, v.View(), "Saved.")
	svc.AssertExpectations(t)
}

func TestSetToken(t *testing.T) {
	svc := &MockSettingsService{}
	v := loadedView(t, svc)
	svc.On("SetToken", "new-token").Return(nil)

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, SectionToken, v.Section())

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("new-token")})
	assert.NotContains(t, v.View(), "new-token")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v.Update(cmd())

	svc.AssertCalled(t, "SetToken", "new-token")
}

func TestSetToken_EmptyRejected(t *testing.T) {
	svc := &MockSettingsService{}
	v := loadedView(t, svc)

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrInvalidInput)
	svc.AssertNotCalled(t, "SetToken", mock.Anything)
	assert.Equal(t, SectionToken, v.Section())
}

func TestSaveError(t *testing.T) {
	svc := &MockSettingsService{}
	v := loadedView(t, svc)
	svc.On("SetBackend", mock.Anything).Return(errors.New("invalid backend URL"))

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(cmd())

	assert.Contains(t, v.View(), "invalid backend URL")
}

func TestEsc(t *testing.T) {
	v := loadedView(t, &MockSettingsService{})

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Equal(t, SectionOverview, v.Section())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestReset(t *testing.T) {
	v := loadedView(t, &MockSettingsService{})
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	v.Reset()

	assert.Equal(t, SectionOverview, v.Section())
	assert.Nil(t, v.Err())
}
