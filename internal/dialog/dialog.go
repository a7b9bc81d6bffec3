// Package dialog implements the modal text-entry flow: a caption, a message,
// one edit field and accept/cancel actions. The host receives either the
// entered text or a cancellation.
package dialog

import (
	"context"
	"fmt"
)

// Mode selects the edit field.
type Mode int

const (
	MultiLine Mode = iota + 1
	SingleLine
	Password
)

func (m Mode) String() string {
	switch m {
	case MultiLine:
		return "multi-line"
	case SingleLine:
		return "single-line"
	case Password:
		return "password"
	default:
		return "unknown"
	}
}

// Request describes one dialog.
type Request struct {
	Caption     string
	Message     string
	AcceptLabel string
	CancelLabel string
	Hint        string // placeholder shown while the field is empty
	Current     string // initial field value
	Mode        Mode
}

// Result is the outcome of a dialog. Text is empty when Accepted is false.
type Result struct {
	Accepted bool
	Text     string
}

// Prompter shows a dialog and blocks until the user accepts or cancels it.
type Prompter interface {
	Prompt(ctx context.Context, req Request) (Result, error)
}

// Validate fills label defaults and rejects unknown modes.
func (r *Request) Validate() error {
	switch r.Mode {
	case 0:
		r.Mode = SingleLine
	case MultiLine, SingleLine, Password:
	default:
		return fmt.Errorf("dialog: unknown edit mode %d", int(r.Mode))
	}
	if r.AcceptLabel == "" {
		r.AcceptLabel = "OK"
	}
	if r.CancelLabel == "" {
		r.CancelLabel = "Cancel"
	}
	return nil
}
