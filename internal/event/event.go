package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	SessionStarted Type = iota + 1
	DirCreated
	FileSkipped
	ScanComplete
	FileStarted
	FileCompleted
	FileFailed
	SessionComplete
)

var typeNames = [...]string{
	SessionStarted:  "SessionStarted",
	DirCreated:      "DirCreated",
	FileSkipped:     "FileSkipped",
	ScanComplete:    "ScanComplete",
	FileStarted:     "FileStarted",
	FileCompleted:   "FileCompleted",
	FileFailed:      "FileFailed",
	SessionComplete: "SessionComplete",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event is a single notification from a sync session. Events are values;
// consumers never share state with the session that produced them.
//
// A FileStarted event is the progress event: Index is the 0-based worklist
// position about to be copied and Total is the worklist length, which stays
// constant for the whole session.
type Event struct {
	Type      Type
	Timestamp time.Time
	Session   string
	Path      string // relative path
	Reason    string // skip reason (FileSkipped)
	Index     int
	Total     int
	Size      int64 // bytes written (FileCompleted)
	Error     error
}
