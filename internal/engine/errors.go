package engine

import (
	"errors"
	"fmt"
)

// ErrSessionActive is returned by Synchronizer.Start while a session runs.
var ErrSessionActive = errors.New("a sync session is already running")

// Kind classifies a per-item or per-subtree failure. Every kind is local to
// the affected entry; none aborts the session.
type Kind int

const (
	ManifestUnreadable Kind = iota + 1
	DirectoryListingFailed
	SourceOpenFailed
	DestinationCreateFailed
	DestinationWriteFailed
	ReadInterrupted
)

var kindNames = [...]string{
	ManifestUnreadable:      "ManifestUnreadable",
	DirectoryListingFailed:  "DirectoryListingFailed",
	SourceOpenFailed:        "SourceOpenFailed",
	DestinationCreateFailed: "DestinationCreateFailed",
	DestinationWriteFailed:  "DestinationWriteFailed",
	ReadInterrupted:         "ReadInterrupted",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Error is a classified failure for one path.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
