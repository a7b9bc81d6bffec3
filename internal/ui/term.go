package ui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether the given file descriptor refers to a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsTerminalWriter reports whether w is an *os.File attached to a terminal.
// Buffers and pipes are never terminals.
func IsTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && IsTTY(f.Fd())
}

// TermWidth returns the terminal width in columns, or 80 if it cannot be
// determined.
func TermWidth(fd uintptr) int {
	w, _, err := term.GetSize(int(fd))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
