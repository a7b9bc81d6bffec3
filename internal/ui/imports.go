package ui

import "github.com/bamsammich/assetsync/internal/event"

// Event is re-exported so presenters read naturally.
type Event = event.Event

// Re-export event types for convenience.
const (
	SessionStarted  = event.SessionStarted
	DirCreated      = event.DirCreated
	FileSkipped     = event.FileSkipped
	ScanComplete    = event.ScanComplete
	FileStarted     = event.FileStarted
	FileCompleted   = event.FileCompleted
	FileFailed      = event.FileFailed
	SessionComplete = event.SessionComplete
)
