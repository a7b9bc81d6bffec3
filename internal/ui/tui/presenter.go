package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bamsammich/assetsync/internal/config"
	"github.com/bamsammich/assetsync/internal/event"
	"github.com/bamsammich/assetsync/internal/stats"
	"github.com/bamsammich/assetsync/internal/ui"
)

// Config configures the TUI presenter.
type Config struct {
	Stats   *stats.Collector
	SrcRoot string
	DstRoot string
	Theme   config.ThemeConfig
	Stop    func() // optional; bound to the stop key
}

// Presenter wraps a Bubble Tea program and implements ui.Presenter.
type Presenter struct {
	cfg   Config
	model Model
}

// NewPresenter creates a new TUI presenter.
func NewPresenter(cfg Config) *Presenter {
	ApplyTheme(cfg.Theme)
	return &Presenter{cfg: cfg}
}

// Run starts the Bubble Tea program and blocks until the user quits.
func (p *Presenter) Run(events <-chan event.Event) error {
	p.model = NewModel(events, p.cfg.Stats, p.cfg.SrcRoot, p.cfg.DstRoot, p.cfg.Stop)
	prog := tea.NewProgram(
		p.model,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)
	finalModel, err := prog.Run()
	if err != nil {
		return err
	}
	p.model = finalModel.(Model)
	return nil
}

// Summary returns the final completion summary line.
func (p *Presenter) Summary() string {
	return ui.CompletionSummary(p.cfg.Stats.Snapshot())
}

var _ ui.Presenter = (*Presenter)(nil)
