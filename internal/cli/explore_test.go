package cli

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
	"github.com/matzehuels/dbnplot/pkg/pipeline"
)

func newTestExplorer(t *testing.T) exploreModel {
	t.Helper()
	env := newTestEnv(t)
	c := New(io.Discard, log.InfoLevel)
	require.NoError(t, c.loadConfig())

	_, reg, opts, err := c.loadModel(context.Background(), hmmModel)
	require.NoError(t, err)
	opts.ExportDir = env.dir
	opts.ExportFile = "hmm.json"

	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	return newExploreModel(context.Background(), runner, reg, opts)
}

func press(t *testing.T, m exploreModel, keys ...tea.KeyMsg) exploreModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(exploreModel)
		require.True(t, ok)
	}
	return m
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestExploreInitialState(t *testing.T) {
	m := newTestExplorer(t)

	require.NoError(t, m.err)
	assert.Equal(t, 4, m.diagram.Slices)
	assert.Len(t, m.diagram.Nodes, 9)
	assert.Contains(t, m.View(), "before 2 · after 1")
	assert.Nil(t, m.Init())
}

func TestExploreSliceKeys(t *testing.T) {
	m := newTestExplorer(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, runeKey('k'))
	assert.Equal(t, 3, m.opts.SliceBefore)
	assert.Equal(t, 2, m.opts.SliceAfter)
	assert.Equal(t, 6, m.diagram.Slices)

	m = press(t, m, runeKey('h'), runeKey('h'), runeKey('h'), runeKey('h'))
	assert.Equal(t, 0, m.opts.SliceBefore, "slice counts never go negative")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.opts.SliceAfter)
	assert.Equal(t, 1, m.diagram.Slices)
}

func TestExploreToggleCentered(t *testing.T) {
	m := newTestExplorer(t)

	m = press(t, m, runeKey('c'))
	assert.Empty(t, m.opts.CenterSuffix)
	assert.Len(t, m.diagram.Nodes, 10, "absolute mode draws the initial distribution")
	assert.Contains(t, m.View(), "absolute")

	m = press(t, m, runeKey('c'))
	assert.Equal(t, `\tau`, m.opts.CenterSuffix)
	assert.Len(t, m.diagram.Nodes, 9)
}

func TestExploreCycleDots(t *testing.T) {
	m := newTestExplorer(t)
	require.Equal(t, expand.DotsAuto, m.opts.Dots)

	want := []expand.DotsConfig{expand.DotsDisabled, expand.DotsOnlyFirst, expand.DotsOnlyLast, expand.DotsBoth, expand.DotsAuto}
	for _, w := range want {
		m = press(t, m, runeKey('d'))
		assert.Equal(t, w, m.opts.Dots)
	}

	m = press(t, m, runeKey('d'))
	assert.Empty(t, m.diagram.Markers)
}

func TestExploreExport(t *testing.T) {
	m := newTestExplorer(t)

	next, cmd := m.Update(runeKey('e'))
	require.NotNil(t, cmd)
	m = next.(exploreModel)
	assert.Contains(t, m.status, "exporting hmm.json")

	msg := cmd()
	done, ok := msg.(exportedMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.FileExists(t, filepath.Join(m.opts.ExportDir, "hmm.json"))

	next, _ = m.Update(msg)
	m = next.(exploreModel)
	assert.Equal(t, filepath.Join(m.opts.ExportDir, "hmm.json"), m.exported)
	assert.Contains(t, m.View(), "wrote")
}

func TestExploreExportFailureKeepsRunning(t *testing.T) {
	m := newTestExplorer(t)
	m.opts.ExportFile = "hmm.gif"

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(exploreModel)
	next, quit := m.Update(cmd())
	m = next.(exploreModel)

	assert.Nil(t, quit)
	assert.Empty(t, m.exported)
	assert.Contains(t, m.status, "unsupported export file")
}

func TestExploreQuit(t *testing.T) {
	m := newTestExplorer(t)

	_, cmd := m.Update(runeKey('q'))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestNextDots(t *testing.T) {
	assert.Equal(t, expand.DotsOnlyFirst, nextDots(expand.DotsDisabled))
	assert.Equal(t, expand.DotsDisabled, nextDots(expand.DotsAuto))
}
