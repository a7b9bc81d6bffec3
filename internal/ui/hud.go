package ui

import (
	"fmt"
	"io"
	"path"
	"time"

	"github.com/bamsammich/assetsync/internal/stats"
)

// ANSI escape sequences.
const (
	ansiDim   = "\033[2m"
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
)

const (
	sparklineWidth   = 20
	progressBarWidth = 20
	currentPathWidth = 60
	hudMinInterval   = 50 * time.Millisecond // don't redraw faster than this
)

// hudPresenter provides a TTY display: a scrolling feed of copied files
// above a 3-line HUD that redraws in place.
type hudPresenter struct {
	w       io.Writer
	stats   stats.ReadTicker
	verbose bool
	dryRun  bool

	// Presentation state, owned by Run's goroutine.
	current      string
	index        int
	total        int
	hudDrawn     bool
	hudLineCount int
	lastHUDDraw  time.Time
}

func (p *hudPresenter) Run(events <-chan Event) error {
	// Fire first tick quickly to seed the ring buffer, then every second.
	secTicker := time.NewTicker(250 * time.Millisecond)
	defer secTicker.Stop()
	firstTickDone := false

	// Redraw while a single large file is streaming and no events arrive.
	redrawTicker := time.NewTicker(100 * time.Millisecond)
	defer redrawTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clearHUD()
				return nil
			}
			p.handleEvent(ev)
			p.maybeDrawHUD()

		case <-redrawTicker.C:
			p.drawHUD()

		case <-secTicker.C:
			p.stats.Tick()
			if !firstTickDone {
				firstTickDone = true
				secTicker.Reset(time.Second)
			}
		}
	}
}

func (p *hudPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case ScanComplete:
		p.total = ev.Total

	case FileStarted:
		p.current = ev.Path
		p.index = ev.Index
		p.total = ev.Total

	case FileCompleted:
		p.feedLine("✓", ev.Path, p.completedDetail(ev))

	case FileFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		p.feedLine("✗", ev.Path, errMsg)

	case FileSkipped:
		if p.verbose {
			p.feedLine("–", ev.Path, ansiDim+"skipped ("+ev.Reason+")"+ansiReset)
		}

	case SessionComplete:
		p.current = ""
	}
}

func (p *hudPresenter) completedDetail(ev Event) string {
	if p.dryRun {
		return ansiDim + "would copy" + ansiReset
	}
	if speed := p.stats.RollingSpeed(5); speed > 0 {
		return fmt.Sprintf("%10s  %s", FormatBytes(ev.Size), FormatRate(speed))
	}
	return fmt.Sprintf("%10s", FormatBytes(ev.Size))
}

// feedLine prints one permanent line above the HUD.
func (p *hudPresenter) feedLine(icon, rel, detail string) {
	p.clearHUD()
	fmt.Fprintf(p.w, "%s  %s  %s\n", icon, styledPath(rel), detail)
	p.drawHUD()
}

// maybeDrawHUD redraws the HUD if enough time has passed since the last draw.
func (p *hudPresenter) maybeDrawHUD() {
	if time.Since(p.lastHUDDraw) < hudMinInterval {
		return
	}
	p.drawHUD()
}

func (p *hudPresenter) drawHUD() {
	snap := p.stats.Snapshot()
	p.clearHUD()

	total := snap.FilesTotal
	if total == 0 {
		total = int64(p.total)
	}
	pct := 0.0
	if total > 0 {
		pct = Fraction(snap.Done(), total)
	}

	spark := Sparkline(p.stats.SparklineData(sparklineWidth), sparklineWidth)
	fmt.Fprintf(p.w, "       %s   %s   %s copied\n",
		spark, FormatRate(p.stats.RollingSpeed(10)), FormatBytes(snap.BytesCopied))

	fmt.Fprintf(p.w, " %3.0f%%  %s   %s / %s files   eta %s\n",
		pct*100, ProgressBar(pct, progressBarWidth),
		FormatCount(snap.Done()), FormatCount(total),
		FormatETA(p.stats.ETA()))

	if p.current != "" {
		fmt.Fprintf(p.w, "       %s→ %s%s\n", ansiDim, TruncPath(p.current, currentPathWidth), ansiReset)
	} else {
		fmt.Fprintln(p.w)
	}

	p.hudDrawn = true
	p.hudLineCount = 3
	p.lastHUDDraw = time.Now()
}

func (p *hudPresenter) clearHUD() {
	if !p.hudDrawn {
		return
	}
	// Move cursor up N lines and clear to end of screen.
	fmt.Fprintf(p.w, "\033[%dA\033[J", p.hudLineCount)
	p.hudDrawn = false
}

func (p *hudPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}

// styledPath dims the directory portion of a bundle path so the file name
// stands out.
func styledPath(rel string) string {
	dir, base := path.Split(rel)
	if dir == "" {
		return base
	}
	return ansiDim + dir + ansiReset + ansiBold + base + ansiReset
}
