package ui

import (
	"bufio"
	"fmt"
	"io"
)

// WriteWorklist prints one "would copy" line per path, in worklist order.
// Dry runs list from the session result rather than the event stream, which
// may drop events under load.
func WriteWorklist(w io.Writer, paths []string) error {
	bw := bufio.NewWriter(w)
	for _, rel := range paths {
		if _, err := fmt.Fprintf(bw, "would copy  %s\n", rel); err != nil {
			return err
		}
	}
	return bw.Flush()
}
