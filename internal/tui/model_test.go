package tui

import (
	"context"
	"testing"

	"github.com/Veraticus/grantflow/internal/network"
	"github.com/Veraticus/grantflow/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLookup(t *testing.T) network.Lookup {
	t.Helper()
	return testutil.NewDataset(t).
		WithFinancials("123456789", "Alpha Foundation", 5000, 250, 1000).
		WithGrant("12-3456789", "98-7654321", 100, 2020).
		Index()
}

func testModel(t *testing.T, opts ...Option) Model {
	t.Helper()
	cfg := defaultConfig()
	opts = append([]Option{WithLookup(testLookup(t)), WithSize(200, 80)}, opts...)
	for _, opt := range opts {
		opt(&cfg)
	}
	return newModel(cfg)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

// submitAndResolve types id, presses enter and feeds the query result back.
func submitAndResolve(t *testing.T, m Model, id string) Model {
	t.Helper()
	m, _ = update(t, m, keyRunes(id))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.True(t, m.loading)

	m, _ = update(t, m, runQuery(m.newQuery(id))())
	require.False(t, m.loading)
	return m
}

func TestModel_NetworkQuery(t *testing.T) {
	m := submitAndResolve(t, testModel(t), "12-3456789")

	require.NoError(t, m.lastError)
	assert.Equal(t, "12-3456789", m.lastID)
	assert.Equal(t, "Network: 2 organizations, 1 grants", m.status)

	view := m.View()
	assert.Contains(t, view, "Alpha Foundation")
	assert.Contains(t, view, "98-7654321")
	assert.Contains(t, view, "$100.00")
}

func TestModel_NotFound(t *testing.T) {
	m := submitAndResolve(t, testModel(t), "55-5555555")

	require.NoError(t, m.lastError)
	assert.Equal(t, "Network: 55-5555555 not found", m.status)
	assert.Contains(t, m.View(), "was not found")
}

func TestModel_InvalidQuery(t *testing.T) {
	m := submitAndResolve(t, testModel(t, WithQueryDefaults(1, -5, nil)), "12-3456789")

	var qe *network.InvalidQueryError
	require.ErrorAs(t, m.lastError, &qe)
	assert.Equal(t, "min_amount", qe.Field)
	assert.Contains(t, m.View(), "invalid query: min_amount")
}

func TestModel_EmptySubmit(t *testing.T) {
	m, cmd := update(t, testModel(t), tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, m.loading)
	assert.Equal(t, "Type an EIN first", m.status)
}

func TestModel_StaleResultIgnored(t *testing.T) {
	m := testModel(t)
	m, _ = update(t, m, keyRunes("123456789"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	stale := runQuery(m.newQuery("123456789"))()

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, stale)

	assert.True(t, m.loading, "an answer to an older submission must not end loading")
	assert.Empty(t, m.lastID)
}

func TestModel_ModeCycle(t *testing.T) {
	m := testModel(t)
	assert.Equal(t, ModeNetwork, m.mode)

	tab := tea.KeyMsg{Type: tea.KeyTab}
	want := []Mode{ModeConnections, ModeProfile, ModeNetwork}
	for _, mode := range want {
		var cmd tea.Cmd
		m, cmd = update(t, m, tab)
		assert.Equal(t, mode, m.mode)
		assert.Nil(t, cmd, "nothing to rerun before the first query")
	}
}

func TestModel_ModeSwitchReruns(t *testing.T) {
	m := submitAndResolve(t, testModel(t), "12-3456789")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, cmd)
	require.True(t, m.loading)

	m, _ = update(t, m, runQuery(m.newQuery(m.lastID))())
	assert.Equal(t, ModeConnections, m.mode)
	assert.Equal(t, "Connections: 1 given, 0 received", m.status)
	assert.Contains(t, m.View(), "Grants given")
}

func TestModel_DepthKeys(t *testing.T) {
	m := testModel(t)
	require.Equal(t, 1, m.depth)

	for range maxExplorerDepth + 2 {
		m, _ = update(t, m, keyRunes("]"))
	}
	assert.Equal(t, maxExplorerDepth, m.depth)

	for range maxExplorerDepth + 2 {
		m, _ = update(t, m, keyRunes("["))
	}
	assert.Equal(t, 0, m.depth)
	assert.Empty(t, m.input.Value(), "depth keys never reach the input")
}

func TestModel_DepthKeysOnlyRerunNetwork(t *testing.T) {
	m := submitAndResolve(t, testModel(t), "12-3456789")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, runQuery(m.newQuery(m.lastID))())

	_, cmd := update(t, m, keyRunes("]"))
	assert.Nil(t, cmd)
}

func TestModel_Clear(t *testing.T) {
	m := submitAndResolve(t, testModel(t), "12-3456789")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, m.input.Value())
	assert.Empty(t, m.lastID)
	assert.NotContains(t, m.View(), "Alpha Foundation")
}

func TestModel_Quit(t *testing.T) {
	m, cmd := update(t, testModel(t), tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestModel_WindowResize(t *testing.T) {
	m, _ := update(t, testModel(t), tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 118, m.results.Width)
	assert.Equal(t, 40-chromeHeight, m.results.Height)
}

func TestRunQuery_Profile(t *testing.T) {
	m := testModel(t)
	m.mode = ModeProfile

	msg, ok := runQuery(m.newQuery("123456789"))().(queryResultMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.Equal(t, "profile for 12-3456789", msg.summary)
	assert.Contains(t, msg.content, "Alpha Foundation")
}

func TestRunQuery_ConnectionsNotFound(t *testing.T) {
	m := testModel(t)
	m.mode = ModeConnections

	msg, ok := runQuery(m.newQuery("000000001"))().(queryResultMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.Equal(t, "000000001 not found", msg.summary)
}

func TestRun_NoLookup(t *testing.T) {
	err := Run(context.Background())
	assert.ErrorIs(t, err, ErrNoLookup)
}
