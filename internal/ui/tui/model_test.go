package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/assetsync/internal/event"
	"github.com/bamsammich/assetsync/internal/stats"
)

func newTestModel() (Model, *stats.Collector) {
	ch := make(chan event.Event, 10)
	c := stats.NewCollector()
	c.SetTotal(100)
	return NewModel(ch, c, "/bundle", "/dst", nil), c
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(Model)
	require.True(t, ok)
	return model, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel()
	model, cmd := update(t, m, runes("q"))
	assert.True(t, model.quitting)
	assert.NotNil(t, cmd)
	assert.Empty(t, model.View())
}

func TestModel_StopCallsStopOnce(t *testing.T) {
	calls := 0
	m := NewModel(make(chan event.Event), stats.NewCollector(), "/bundle", "/dst", func() { calls++ })

	m, _ = update(t, m, runes("x"))
	m, _ = update(t, m, runes("x"))
	assert.Equal(t, 1, calls)
	assert.True(t, m.stopping)
	assert.Contains(t, m.status, "stopping")
}

func TestModel_SwitchViews(t *testing.T) {
	m, _ := newTestModel()
	m, _ = update(t, m, runes("r"))
	assert.Equal(t, viewRate, m.mode)
	m, _ = update(t, m, runes("f"))
	assert.Equal(t, viewFeed, m.mode)
}

func TestModel_WindowResize(t *testing.T) {
	m, _ := newTestModel()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
	assert.Equal(t, 24, m.bar.Width)
}

func TestModel_SessionEvent(t *testing.T) {
	m, _ := newTestModel()
	m, cmd := update(t, m, sessionEventMsg(event.Event{Type: event.FileStarted, Path: "a.png", Total: 3}))
	require.NotNil(t, m.feed.current)
	assert.NotNil(t, cmd)
}

func TestModel_ChannelDoneStaysOpen(t *testing.T) {
	m, _ := newTestModel()
	m, cmd := update(t, m, channelDoneMsg{})
	assert.True(t, m.done)
	assert.False(t, m.quitting)
	assert.NotNil(t, cmd)
}

func TestModel_Tick(t *testing.T) {
	m, c := newTestModel()
	c.AddFilesCopied(5)
	c.AddBytesCopied(1024 * 1024)

	m, cmd := update(t, m, tickMsg(time.Now()))
	assert.Equal(t, int64(5), m.lastSnap.FilesCopied)
	assert.NotNil(t, cmd)
}

func TestModel_Views(t *testing.T) {
	m, c := newTestModel()
	m.width, m.height = 80, 30
	c.AddFilesCopied(50)
	m, _ = update(t, m, tickMsg(time.Now()))

	out := m.View()
	assert.Contains(t, out, "assetsync")
	assert.Contains(t, out, "50 / 100 files")
	assert.Contains(t, out, "quit")

	m.mode = viewRate
	assert.Contains(t, m.View(), "files/s")
}

func TestModel_ScrollKeys(t *testing.T) {
	m, _ := newTestModel()
	for range 10 {
		m.feed.handleEvent(event.Event{Type: event.FileCompleted, Path: "a.png", Size: 100})
	}

	m, _ = update(t, m, runes("j"))
	assert.False(t, m.feed.autoScroll)

	m, _ = update(t, m, runes("G"))
	assert.True(t, m.feed.autoScroll)

	m, _ = update(t, m, runes("g"))
	assert.Equal(t, 0, m.feed.scrollOffset)
	assert.False(t, m.feed.autoScroll)
}

func TestModel_SaveOnlyWhenDone(t *testing.T) {
	m, _ := newTestModel()
	m, _ = update(t, m, runes("s"))
	assert.False(t, m.saving)

	m.done = true
	m, cmd := update(t, m, runes("s"))
	assert.True(t, m.saving)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.save.Value(), "assetsync-")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	assert.False(t, m.saving)
}

func TestModel_SaveWritesReport(t *testing.T) {
	m, _ := newTestModel()
	m.done = true
	m.feed.handleEvent(event.Event{Type: event.FileCompleted, Path: "textures/a.png", Size: 40})
	m.feed.handleEvent(event.Event{Type: event.FileSkipped, Path: "textures/b.png", Reason: "unchanged"})

	m, _ = update(t, m, runes("s"))
	path := filepath.Join(t.TempDir(), "report.log")
	m.save.SetValue(path)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	result, ok := msg.(saveResultMsg)
	require.True(t, ok)
	require.NoError(t, result.err)

	m, _ = update(t, m, result)
	assert.False(t, m.saving)
	assert.Contains(t, m.status, "saved to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "assetsync deployment report")
	assert.Contains(t, string(data), "textures/a.png")
	assert.Contains(t, string(data), "skipped (unchanged)")
}
