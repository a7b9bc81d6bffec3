package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/assetsync/internal/stats"
)

// plainPresenter outputs one line per copied file to stdout, and periodic
// progress to stderr. Used when stderr is not a terminal.
type plainPresenter struct {
	w        io.Writer
	errW     io.Writer
	stats    stats.ReadTicker
	verbose  bool
	dryRun   bool
	progress bool
}

const plainProgressEvery = 5 // seconds

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	ticks := 0

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
			ticks++
			if p.progress && ticks%plainProgressEvery == 0 {
				p.printProgress()
			}
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case FileCompleted:
		if p.dryRun {
			return // listed from the result by WriteWorklist
		}
		fmt.Fprintf(p.w, "%s  %s\n", ev.Path, FormatBytes(ev.Size))
	case FileFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		fmt.Fprintf(p.w, "%s  failed: %s\n", ev.Path, errMsg)
	case FileSkipped:
		if p.verbose {
			fmt.Fprintf(p.w, "%s  skipped (%s)\n", ev.Path, ev.Reason)
		}
	case ScanComplete:
		if p.verbose {
			fmt.Fprintf(p.errW, "%s files to copy\n", FormatCount(int64(ev.Total)))
		}
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	if snap.FilesTotal == 0 {
		fmt.Fprintf(p.errW, "progress: scanning, %s up to date\n", FormatCount(snap.FilesSkipped))
		return
	}
	fmt.Fprintf(p.errW, "progress: %.0f%% %s/%s files %s %s eta %s\n",
		Fraction(snap.Done(), snap.FilesTotal)*100,
		FormatCount(snap.Done()), FormatCount(snap.FilesTotal),
		FormatBytes(snap.BytesCopied),
		FormatRate(p.stats.RollingSpeed(10)),
		FormatETA(p.stats.ETA()),
	)
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
