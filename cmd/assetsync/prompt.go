package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/assetsync/internal/bridge"
	"github.com/bamsammich/assetsync/internal/dialog"
)

const pollInterval = 50 * time.Millisecond

func newPromptCmd() *cobra.Command {
	var (
		req  dialog.Request
		mode string
	)

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Show a text-entry dialog and print the status code and text",
		Long: `Show a text-entry dialog the way a host loop would: the dialog opens
without blocking and its state is polled until the user answers.

Prints the dialog state (0 accepted, 1 cancelled) on the first line and the
entered text on the second. Exits 1 when the dialog is cancelled.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := parseMode(mode)
			if err != nil {
				return usageError(err)
			}
			req.Mode = m
			if err := req.Validate(); err != nil {
				return usageError(err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			b := bridge.New(ctx, bridge.Config{
				Prompter: dialog.NewTerminal(os.Stdin, os.Stderr),
			})
			state, text := pollDialog(ctx, b, req)

			fmt.Fprintf(cmd.OutOrStdout(), "%d\n%s\n", state, text)
			if state != bridge.DialogAccepted {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Caption, "caption", "", "dialog caption")
	f.StringVar(&req.Message, "message", "", "message shown above the field")
	f.StringVar(&req.AcceptLabel, "accept", "OK", "accept button label")
	f.StringVar(&req.CancelLabel, "cancel", "Cancel", "cancel button label")
	f.StringVar(&req.Hint, "hint", "", "placeholder shown while the field is empty")
	f.StringVar(&req.Current, "current", "", "initial field value")
	f.StringVar(&mode, "mode", "single", "edit mode: single, multi or password")
	return cmd
}

func parseMode(s string) (dialog.Mode, error) {
	switch s {
	case "single", "":
		return dialog.SingleLine, nil
	case "multi":
		return dialog.MultiLine, nil
	case "password":
		return dialog.Password, nil
	default:
		return 0, fmt.Errorf("invalid --mode %q (use single, multi or password)", s)
	}
}

// pollDialog opens the dialog and polls the bridge until it leaves the
// pending state or ctx ends.
func pollDialog(ctx context.Context, b *bridge.Bridge, req dialog.Request) (int, string) {
	b.ShowDialog(req)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return bridge.DialogCancelled, ""
		case <-ticker.C:
		}
		switch state := b.DialogState(); state {
		case bridge.DialogPending:
			continue
		case bridge.DialogAccepted:
			return state, b.DialogValue()
		default:
			return state, ""
		}
	}
}
