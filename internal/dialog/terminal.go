package dialog

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Terminal shows dialogs as an inline Bubble Tea program.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

// NewTerminal creates a Terminal prompter reading keys from in and drawing
// on out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

// Prompt runs the dialog until it is accepted or cancelled. Cancelling ctx
// tears the dialog down and reports it as cancelled along with ctx's error.
func (t *Terminal) Prompt(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	prog := tea.NewProgram(NewModel(req),
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
		tea.WithoutSignalHandler(),
	)
	final, err := prog.Run()
	m, ok := final.(Model)
	if ok && m.Done() {
		return m.Result(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}
	if err != nil {
		return Result{}, fmt.Errorf("dialog: %w", err)
	}
	return Result{}, nil
}

var _ Prompter = (*Terminal)(nil)
