package tui

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/bamsammich/assetsync/internal/event"
	"github.com/bamsammich/assetsync/internal/ui"
)

// currentEntry is the worklist item being copied right now. Sessions copy one
// item at a time, so there is at most one.
type currentEntry struct {
	path    string
	index   int
	total   int
	started time.Time
}

type completedEntry struct {
	path    string
	size    int64
	reason  string
	skipped bool
	failed  bool
	errMsg  string
}

type errorEntry struct {
	path string
	err  string
	time time.Time
}

type feedView struct {
	current      *currentEntry
	completed    []completedEntry // unbounded history
	errors       []errorEntry     // never evicted
	dirs         int
	scrollOffset int  // viewport offset into completed
	autoScroll   bool // follow new entries
}

func newFeedView() feedView {
	return feedView{autoScroll: true}
}

func (f *feedView) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.FileStarted:
		f.current = &currentEntry{
			path:    ev.Path,
			index:   ev.Index,
			total:   ev.Total,
			started: ev.Timestamp,
		}

	case event.FileCompleted:
		f.current = nil
		f.completed = append(f.completed, completedEntry{path: ev.Path, size: ev.Size})

	case event.FileFailed:
		f.current = nil
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		f.completed = append(f.completed, completedEntry{path: ev.Path, failed: true, errMsg: errMsg})
		f.errors = append(f.errors, errorEntry{path: ev.Path, err: errMsg, time: ev.Timestamp})

	case event.FileSkipped:
		f.completed = append(f.completed, completedEntry{path: ev.Path, skipped: true, reason: ev.Reason})

	case event.DirCreated:
		f.dirs++

	case event.SessionComplete:
		f.current = nil
	}
}

func (f *feedView) scrollDown() {
	f.autoScroll = false
	f.scrollOffset++
}

func (f *feedView) scrollUp() {
	f.autoScroll = false
	if f.scrollOffset > 0 {
		f.scrollOffset--
	}
}

func (f *feedView) scrollToTop() {
	f.autoScroll = false
	f.scrollOffset = 0
}

// scrollToBottom jumps to the newest entry and follows from there.
func (f *feedView) scrollToBottom() {
	f.autoScroll = true
}

func (f *feedView) view(width, height int, speed float64) string {
	if width < 20 {
		width = 20
	}

	errCount := min(len(f.errors), 5)

	reserved := 0
	if f.current != nil {
		reserved += 2
	}
	if errCount > 0 {
		reserved += errCount + 1
	}
	if len(f.completed) > 0 {
		reserved++
	}
	completedHeight := max(height-reserved, 1)

	maxOffset := max(len(f.completed)-completedHeight, 0)
	if f.autoScroll {
		f.scrollOffset = maxOffset
	}
	f.scrollOffset = min(max(f.scrollOffset, 0), maxOffset)

	var b strings.Builder

	if f.current != nil {
		b.WriteString(styleDivider.Render(fmt.Sprintf("─ copying %d of %d", f.current.index+1, f.current.total)))
		b.WriteByte('\n')
		fmt.Fprintf(&b, "  %s  %s\n", styleCurrent.Render("⟩"), styledPath(f.current.path, width-6))
	}

	if len(f.completed) > 0 {
		b.WriteString(styleDivider.Render(fmt.Sprintf("─ completed (%d)", len(f.completed))))
		b.WriteByte('\n')
		b.WriteString(f.renderCompleted(width, completedHeight, speed))
	}

	if errCount > 0 {
		b.WriteString(styleDivider.Render(fmt.Sprintf("─ errors (%d)", len(f.errors))))
		b.WriteByte('\n')
		for _, e := range f.errors[len(f.errors)-errCount:] {
			fmt.Fprintf(&b, "  %s  %s  %s\n",
				styleIconFailed.Render("✗"),
				styleErrorPath.Render(e.path),
				styleError.Render(e.err))
		}
	}

	return b.String()
}

func (f *feedView) renderCompleted(width, height int, speed float64) string {
	end := min(f.scrollOffset+height, len(f.completed))

	var b strings.Builder
	for _, e := range f.completed[f.scrollOffset:end] {
		var icon, extra string
		sizeStr := styleFileSize.Render(fmt.Sprintf("%10s", ui.FormatBytes(e.size)))

		switch {
		case e.failed:
			icon = styleIconFailed.Render("✗")
			sizeStr = ""
			extra = styleError.Render(e.errMsg)
		case e.skipped:
			icon = styleIconSkipped.Render("–")
			sizeStr = ""
			extra = styleIconSkipped.Render("skipped (" + e.reason + ")")
		default:
			icon = styleIconDone.Render("✓")
			if speed > 0 {
				extra = styleFileSpeed.Render(ui.FormatRate(speed))
			}
		}

		line := fmt.Sprintf("  %s  %s", icon, styledPath(e.path, width-30))
		for _, part := range []string{sizeStr, extra} {
			if part != "" {
				line += "  " + part
			}
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// styledPath dims the directory part of a bundle path.
func styledPath(rel string, maxLen int) string {
	rel = ui.TruncPath(rel, max(maxLen, 10))
	dir, base := path.Split(rel)
	if dir == "" {
		return styleFilePath.Render(base)
	}
	return styleFileDir.Render(dir) + styleFilePath.Render(base)
}
