package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadFile appends the rules in the file at path to the chain.
func (c *Chain) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open filter file: %w", err)
	}
	defer f.Close()

	if err := c.ReadRules(f); err != nil {
		return fmt.Errorf("filter file %s: %w", path, err)
	}
	return nil
}

// ReadRules appends one rule per line. A line starting with "+ " includes the
// pattern, "- " or a bare pattern excludes it, and "#" starts a comment.
// Blank lines are ignored.
func (c *Chain) ReadRules(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		include := false
		switch {
		case strings.HasPrefix(text, "+ "):
			include = true
			text = strings.TrimSpace(text[2:])
		case strings.HasPrefix(text, "- "):
			text = strings.TrimSpace(text[2:])
		}
		if err := c.Add(text, include); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return scanner.Err()
}
