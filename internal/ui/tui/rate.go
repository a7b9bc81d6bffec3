package tui

import (
	"fmt"
	"strings"

	"github.com/bamsammich/assetsync/internal/stats"
	"github.com/bamsammich/assetsync/internal/ui"
)

// rateView shows throughput: a big rate number, a 60-second sparkline and
// the per-second counters.
type rateView struct{}

func (rateView) view(width int, snap stats.Snapshot, reader stats.Reader) string {
	if width < 20 {
		width = 20
	}

	var b strings.Builder

	speed := reader.RollingSpeed(5)
	b.WriteString("  " + styleBigNumber.Render(ui.FormatRate(speed)))
	b.WriteString("\n\n")

	sparkWidth := max(width-4, 10)
	spark := ui.Sparkline(reader.SparklineData(sparkWidth), sparkWidth)
	b.WriteString("  " + styleSparkline.Render(spark))
	b.WriteString("\n\n")

	fps := reader.RollingFilesPerSec(5)
	fmt.Fprintf(&b, "  %s   %s\n\n",
		styleFileSpeed.Render(fmt.Sprintf("%.1f files/s", fps)),
		styleFileSize.Render(fmt.Sprintf("%s / %s files",
			ui.FormatCount(snap.Done()),
			ui.FormatCount(snap.FilesTotal))),
	)

	fmt.Fprintf(&b, "  %s %s   %s %s   %s %s   %s %s\n",
		styleDivider.Render("copied"), ui.FormatCount(snap.FilesCopied),
		styleDivider.Render("skipped"), ui.FormatCount(snap.FilesSkipped),
		styleDivider.Render("failed"), ui.FormatCount(snap.FilesFailed),
		styleDivider.Render("dirs"), ui.FormatCount(snap.DirsCreated),
	)
	return b.String()
}
