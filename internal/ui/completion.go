package ui

import (
	"fmt"

	"github.com/bamsammich/assetsync/internal/stats"
)

// CompletionSummary builds the final summary line from a snapshot.
// Format: done ✓  copied 48  skipped 1,203  size 2.1 GiB  avg 41 MiB/s  time 17s  errors 0
func CompletionSummary(snap stats.Snapshot) string {
	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.BytesCopied) / snap.Elapsed.Seconds()
	}

	icon := "✓"
	if snap.FilesFailed > 0 {
		icon = "✗"
	}

	return fmt.Sprintf("done %s  copied %s  skipped %s  size %s  avg %s  time %s  errors %d",
		icon,
		FormatCount(snap.FilesCopied),
		FormatCount(snap.FilesSkipped),
		FormatBytes(snap.BytesCopied),
		FormatRate(avgSpeed),
		FormatDuration(snap.Elapsed),
		snap.FilesFailed,
	)
}
