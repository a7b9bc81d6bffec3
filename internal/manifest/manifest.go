// Package manifest loads the flat index of bundle paths that are directories
// and classifies bundle entries against it.
package manifest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bamsammich/assetsync/internal/bundle"
)

// DefaultName is the manifest file name at the bundle root.
const DefaultName = "index.txt"

const maxLineSize = 1 << 20

// Kind is the classification of a bundle entry.
type Kind int

const (
	File Kind = iota
	Directory
)

func (k Kind) String() string {
	if k == Directory {
		return "directory"
	}
	return "file"
}

// DirectorySet is the set of bundle paths known to be directories.
// Membership is an exact, case-sensitive string match. The zero value is an
// empty set.
type DirectorySet struct {
	dirs map[string]struct{}
}

// NewDirectorySet builds a set from explicit paths.
func NewDirectorySet(paths ...string) DirectorySet {
	s := DirectorySet{dirs: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		s.dirs[p] = struct{}{}
	}
	return s
}

// Contains reports whether path is a listed directory.
func (s DirectorySet) Contains(path string) bool {
	_, ok := s.dirs[path]
	return ok
}

// Classify returns Directory iff path is in the set.
func (s DirectorySet) Classify(path string) Kind {
	if s.Contains(path) {
		return Directory
	}
	return File
}

// Len returns the number of distinct directories.
func (s DirectorySet) Len() int {
	return len(s.dirs)
}

// Parse reads one path per line. Line text is kept verbatim apart from the
// line terminator. On a read error the partial set is discarded.
func Parse(r io.Reader) (DirectorySet, error) {
	s := DirectorySet{dirs: make(map[string]struct{})}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		s.dirs[sc.Text()] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return DirectorySet{}, fmt.Errorf("read manifest: %w", err)
	}
	return s, nil
}

// Load reads the manifest name from src. The returned set is always usable:
// a manifest that cannot be opened or read yields an empty set, a warning, and
// a non-nil error explaining why, and the session still runs with every entry
// treated as a file.
func Load(ctx context.Context, src bundle.Provider, name string, logger *slog.Logger) (DirectorySet, error) {
	if logger == nil {
		logger = slog.Default()
	}

	rc, err := src.Open(ctx, name)
	if err != nil {
		logger.Warn("manifest unreadable, treating all entries as files", "manifest", name, "error", err)
		return DirectorySet{}, fmt.Errorf("open manifest: %w", err)
	}
	defer rc.Close()

	s, err := Parse(rc)
	if err != nil {
		logger.Warn("manifest unreadable, treating all entries as files", "manifest", name, "error", err)
		return DirectorySet{}, err
	}

	logger.Debug("manifest loaded", "manifest", name, "directories", s.Len())
	return s, nil
}
