package filter

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Pattern is a compiled rsync-style glob.
//
//   - A leading "/" or any inner "/" anchors the pattern at the bundle root.
//   - Otherwise the pattern matches the base name or any trailing run of
//     path segments, and so does a pattern starting with "**/".
//   - A trailing "/" matches directories only.
//   - "*" and "?" stop at "/"; "**" crosses it. Classes ([a-z], [!a-z]) and
//     alternation ({png,jpg}) follow gobwas/glob.
type Pattern struct {
	g        glob.Glob
	text     string
	anchored bool
	dirOnly  bool
}

// Compile parses an rsync-style glob.
func Compile(pattern string) (*Pattern, error) {
	p := &Pattern{text: pattern}
	expr := pattern

	if strings.HasSuffix(expr, "/") {
		p.dirOnly = true
		expr = strings.TrimSuffix(expr, "/")
	}
	switch {
	case strings.HasPrefix(expr, "/"):
		p.anchored = true
		expr = strings.TrimPrefix(expr, "/")
	case strings.HasPrefix(expr, "**/"):
		expr = strings.TrimPrefix(expr, "**/")
	case strings.Contains(expr, "/"):
		p.anchored = true
	}
	if expr == "" {
		return nil, fmt.Errorf("filter pattern %q: empty", pattern)
	}

	g, err := glob.Compile(expr, '/')
	if err != nil {
		return nil, fmt.Errorf("filter pattern %q: %w", pattern, err)
	}
	p.g = g
	return p, nil
}

// String returns the pattern as written.
func (p *Pattern) String() string { return p.text }

// Match tests a bundle-relative path.
func (p *Pattern) Match(rel string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	if p.anchored {
		return p.g.Match(rel)
	}
	for {
		if p.g.Match(rel) {
			return true
		}
		i := strings.IndexByte(rel, '/')
		if i < 0 {
			return false
		}
		rel = rel[i+1:]
	}
}
