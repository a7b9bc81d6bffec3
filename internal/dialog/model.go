package dialog

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	styleBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#cba6f7")).Padding(0, 1)
	styleCaption = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#cdd6f4"))
	styleMessage = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8"))
	styleButton  = lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4")).Padding(0, 1).Border(lipgloss.NormalBorder(), false, true)
)

// KeyMap defines the dialog key bindings.
type KeyMap struct {
	Accept key.Binding
	Cancel key.Binding
}

// keysFor returns the bindings for mode. Enter inserts a newline in the
// multi-line field, so that mode accepts on ctrl+s instead.
func keysFor(mode Mode, acceptLabel, cancelLabel string) KeyMap {
	accept := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", strings.ToLower(acceptLabel)))
	if mode == MultiLine {
		accept = key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", strings.ToLower(acceptLabel)))
	}
	return KeyMap{
		Accept: accept,
		Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", strings.ToLower(cancelLabel))),
	}
}

// Model is the Bubble Tea model for one dialog. It quits as soon as the
// user accepts or cancels.
type Model struct {
	req    Request
	keys   KeyMap
	help   help.Model
	input  textinput.Model
	area   textarea.Model
	result Result
	done   bool
}

// NewModel builds a dialog for req. req must already be validated.
func NewModel(req Request) Model {
	m := Model{
		req:  req,
		keys: keysFor(req.Mode, req.AcceptLabel, req.CancelLabel),
		help: help.New(),
	}

	if req.Mode == MultiLine {
		m.area = textarea.New()
		m.area.Placeholder = req.Hint
		m.area.ShowLineNumbers = false
		m.area.SetValue(req.Current)
		m.area.Focus()
		return m
	}

	m.input = textinput.New()
	m.input.Placeholder = req.Hint
	m.input.SetValue(req.Current)
	m.input.CursorEnd()
	if req.Mode == Password {
		m.input.EchoMode = textinput.EchoPassword
		m.input.EchoCharacter = '•'
	}
	m.input.Focus()
	return m
}

// Result returns the outcome. It is only meaningful once Done reports true.
func (m Model) Result() Result { return m.result }

// Done reports whether the user has accepted or cancelled.
func (m Model) Done() bool { return m.done }

func (m Model) Init() tea.Cmd {
	if m.req.Mode == MultiLine {
		return textarea.Blink
	}
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Accept):
			m.done = true
			m.result = Result{Accepted: true, Text: m.value()}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel):
			m.done = true
			m.result = Result{}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	if m.req.Mode == MultiLine {
		m.area, cmd = m.area.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) value() string {
	if m.req.Mode == MultiLine {
		return m.area.Value()
	}
	return m.input.Value()
}

func (m Model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	if m.req.Caption != "" {
		b.WriteString(styleCaption.Render(m.req.Caption))
		b.WriteString("\n")
	}
	if m.req.Message != "" {
		b.WriteString(styleMessage.Render(m.req.Message))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.req.Mode == MultiLine {
		b.WriteString(m.area.View())
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styleButton.Render(m.req.AcceptLabel), " ", styleButton.Render(m.req.CancelLabel)))
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.Accept, m.keys.Cancel}))

	return styleBox.Render(b.String()) + "\n"
}
