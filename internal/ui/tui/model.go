package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bamsammich/assetsync/internal/event"
	"github.com/bamsammich/assetsync/internal/stats"
	"github.com/bamsammich/assetsync/internal/ui"
)

type viewMode int

const (
	viewFeed viewMode = iota
	viewRate
)

// Bubble Tea messages.
type sessionEventMsg event.Event
type channelDoneMsg struct{}
type tickMsg time.Time
type saveResultMsg struct {
	path string
	err  error
}

func readNextEvent(ch <-chan event.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return channelDoneMsg{}
		}
		return sessionEventMsg(ev)
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type keyMap struct {
	Quit   key.Binding
	Stop   key.Binding
	Rate   key.Binding
	Feed   key.Binding
	Down   key.Binding
	Up     key.Binding
	Top    key.Binding
	Bottom key.Binding
	Save   key.Binding
	Submit key.Binding
	Escape key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Stop:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Rate:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rate")),
		Feed:   key.NewBinding(key.WithKeys("f", "e"), key.WithHelp("f", "feed")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "scroll")),
		Up:     key.NewBinding(key.WithKeys("k", "up")),
		Top:    key.NewBinding(key.WithKeys("g")),
		Bottom: key.NewBinding(key.WithKeys("G")),
		Save:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Escape: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// Model is the root Bubble Tea model.
type Model struct {
	events  <-chan event.Event
	stats   stats.ReadTicker
	srcRoot string
	dstRoot string
	stop    func()

	keys     keyMap
	help     help.Model
	bar      progress.Model
	mode     viewMode
	feed     feedView
	rate     rateView
	width    int
	height   int
	status   string // transient notification
	done     bool   // session finished
	stopping bool
	quitting bool

	lastSnap  stats.Snapshot
	lastSpeed float64
	lastETA   time.Duration

	saving bool
	save   textinput.Model
}

// NewModel creates the TUI model. stop, if non-nil, asks the running
// session to stop; the model keeps draining events until the channel closes.
func NewModel(events <-chan event.Event, collector stats.ReadTicker, srcRoot, dstRoot string, stop func()) Model {
	h := help.New()
	h.Styles.ShortKey = styleKeybindKey
	h.Styles.ShortDesc = styleKeybindLabel
	h.ShortSeparator = "   "

	save := textinput.New()
	save.Prompt = "Save to: "
	save.PromptStyle = styleSavePrompt
	save.CharLimit = 256

	return Model{
		events:  events,
		stats:   collector,
		srcRoot: srcRoot,
		dstRoot: dstRoot,
		stop:    stop,
		keys:    defaultKeyMap(),
		help:    h,
		bar:     progress.New(progress.WithSolidFill(string(ColorGreen)), progress.WithoutPercentage(), progress.WithWidth(20)),
		feed:    newFeedView(),
		width:   80,
		height:  24,
		save:    save,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(readNextEvent(m.events), tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.saving {
			return m.handleSaveKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.bar.Width = max(msg.Width/5, 10)
		return m, nil

	case sessionEventMsg:
		m.feed.handleEvent(event.Event(msg))
		return m, readNextEvent(m.events)

	case channelDoneMsg:
		m.done = true
		m.refresh()
		m.lastETA = 0
		return m, tickCmd()

	case tickMsg:
		m.stats.Tick()
		m.refresh()
		return m, tickCmd()

	case saveResultMsg:
		m.saving = false
		m.save.Blur()
		if msg.err != nil {
			m.status = fmt.Sprintf("save failed: %v", msg.err)
		} else {
			m.status = "saved to " + msg.path
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) refresh() {
	m.lastSnap = m.stats.Snapshot()
	m.lastSpeed = m.stats.RollingSpeed(10)
	m.lastETA = m.stats.ETA()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Stop):
		if !m.done && !m.stopping && m.stop != nil {
			m.stop()
			m.stopping = true
			m.status = "stopping after the current file"
		}

	case key.Matches(msg, m.keys.Rate):
		m.mode = viewRate
		m.status = ""

	case key.Matches(msg, m.keys.Feed):
		m.mode = viewFeed
		m.status = ""

	case key.Matches(msg, m.keys.Down):
		if m.mode == viewFeed {
			m.feed.scrollDown()
		}

	case key.Matches(msg, m.keys.Up):
		if m.mode == viewFeed {
			m.feed.scrollUp()
		}

	case key.Matches(msg, m.keys.Bottom):
		if m.mode == viewFeed {
			m.feed.scrollToBottom()
		}

	case key.Matches(msg, m.keys.Top):
		if m.mode == viewFeed {
			m.feed.scrollToTop()
		}

	case key.Matches(msg, m.keys.Save):
		if m.done {
			m.saving = true
			m.status = ""
			m.save.SetValue(fmt.Sprintf("assetsync-%s.log", time.Now().Format("2006-01-02-150405")))
			m.save.CursorEnd()
			return m, m.save.Focus()
		}
	}
	return m, nil
}

func (m Model) handleSaveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.saving = false
		m.save.Blur()
		m.status = ""
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		path := strings.TrimSpace(m.save.Value())
		if path == "" {
			return m, nil
		}
		return m, m.writeReport(path)
	}

	var cmd tea.Cmd
	m.save, cmd = m.save.Update(msg)
	return m, cmd
}

func (m Model) writeReport(path string) tea.Cmd {
	snap := m.lastSnap
	srcRoot, dstRoot := m.srcRoot, m.dstRoot
	completed := make([]completedEntry, len(m.feed.completed))
	copy(completed, m.feed.completed)

	return func() tea.Msg {
		var b strings.Builder

		b.WriteString("assetsync deployment report\n")
		b.WriteString("===========================\n")
		fmt.Fprintf(&b, "source:      %s\n", srcRoot)
		fmt.Fprintf(&b, "destination: %s\n", dstRoot)
		fmt.Fprintf(&b, "completed:   %s\n", time.Now().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&b, "duration:    %s\n", ui.FormatDuration(snap.Elapsed))
		fmt.Fprintf(&b, "copied:      %s\n", ui.FormatCount(snap.FilesCopied))
		fmt.Fprintf(&b, "skipped:     %s\n", ui.FormatCount(snap.FilesSkipped))
		fmt.Fprintf(&b, "size:        %s\n", ui.FormatBytes(snap.BytesCopied))
		avg := 0.0
		if snap.Elapsed.Seconds() > 0 {
			avg = float64(snap.BytesCopied) / snap.Elapsed.Seconds()
		}
		fmt.Fprintf(&b, "avg speed:   %s\n", ui.FormatRate(avg))
		fmt.Fprintf(&b, "errors:      %d\n", snap.FilesFailed)
		b.WriteString("\n--- files ---\n")

		for _, e := range completed {
			switch {
			case e.failed:
				fmt.Fprintf(&b, "x  %-50s  %s\n", e.path, e.errMsg)
			case e.skipped:
				fmt.Fprintf(&b, "-  %-50s  skipped (%s)\n", e.path, e.reason)
			default:
				fmt.Fprintf(&b, "v  %-50s  %s\n", e.path, ui.FormatBytes(e.size))
			}
		}

		err := os.WriteFile(path, []byte(b.String()), 0o644) //nolint:gosec // user-chosen path for report output
		return saveResultMsg{path: path, err: err}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')

	contentHeight := max(m.height-3, 3) // header, status, footer

	switch m.mode {
	case viewFeed:
		b.WriteString(m.feed.view(m.width, contentHeight, m.lastSpeed))
	case viewRate:
		b.WriteString(m.rate.view(m.width, m.lastSnap, m.stats))
	}

	switch {
	case m.saving:
		b.WriteString("  " + m.save.View())
	case m.status != "":
		b.WriteString(styleStatus.Render("  " + m.status))
	}
	b.WriteByte('\n')

	b.WriteString("  " + m.help.ShortHelpView(m.footerKeys()))
	return b.String()
}

func (m Model) renderHeader() string {
	snap := m.lastSnap
	label := styleHeaderLabel.Render("assetsync")

	if m.done {
		return styleHeader.Render(fmt.Sprintf("  %s  %s  %s  %s / %s files  %s",
			label,
			styleIconDone.Render("done"),
			ui.FormatBytes(snap.BytesCopied),
			ui.FormatCount(snap.FilesCopied),
			ui.FormatCount(snap.FilesTotal),
			ui.FormatDuration(snap.Elapsed),
		))
	}

	var pct float64
	if snap.FilesTotal > 0 {
		pct = ui.Fraction(snap.Done(), snap.FilesTotal)
	}
	return styleHeader.Render(fmt.Sprintf("  %s  %3.0f%%  %s  %s / %s files  %s  eta %s",
		label,
		pct*100,
		m.bar.ViewAs(pct),
		ui.FormatCount(snap.Done()),
		ui.FormatCount(snap.FilesTotal),
		ui.FormatBytes(snap.BytesCopied),
		ui.FormatETA(m.lastETA),
	))
}

func (m Model) footerKeys() []key.Binding {
	if m.saving {
		return []key.Binding{m.keys.Submit, m.keys.Escape}
	}
	if m.done {
		return []key.Binding{m.keys.Save, m.keys.Down, m.keys.Rate, m.keys.Feed, m.keys.Quit}
	}
	return []key.Binding{m.keys.Quit, m.keys.Stop, m.keys.Rate, m.keys.Feed, m.keys.Down}
}
