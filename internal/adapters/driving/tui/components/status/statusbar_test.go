package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())
}

func TestBar_ReadyShowsShortHelp(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	view := bar.View()
	assert.Contains(t, view, "Ready")
	assert.Contains(t, view, "q: quit")
	assert.Contains(t, view, "?: help")
}

func TestBar_ErrorMessage(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError, "backend unavailable")

	assert.Contains(t, bar.View(), "Error: backend unavailable")
	assert.Equal(t, "backend unavailable", bar.Message())
}

func TestBar_BusyAndNotice(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetState(StateBusy, "")
	assert.Contains(t, bar.View(), "Working...")

	bar.SetState(StateNotice, "Indexing started")
	assert.Contains(t, bar.View(), "Indexing started")
}

func TestBar_SetBindings(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(nil, km)
	bar.SetWidth(200)

	bar.SetBindings(km.ConnectorsHelp())
	view := bar.View()
	assert.Contains(t, view, "i: index")
	assert.Contains(t, view, "d: delete")
	assert.NotContains(t, view, "?: help")

	bar.SetBindings(nil)
	assert.Contains(t, bar.View(), "?: help")
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError, "boom")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
}
