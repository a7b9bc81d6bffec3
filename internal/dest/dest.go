// Package dest is the writable side of a deployment: a directory tree that
// mirrors the bundle's relative paths.
package dest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/bamsammich/assetsync/internal/platform"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Target wraps a billy.Filesystem rooted at the deployment directory.
type Target struct {
	fs     billy.Filesystem
	osRoot string // set when backed by the OS filesystem
}

// OpenOS returns a Target rooted at root on disk, creating root if needed.
func OpenOS(root string) (*Target, error) {
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("dest: create root %q: %w", root, err)
	}
	return &Target{fs: osfs.New(root), osRoot: root}, nil
}

// NewMemory returns an in-memory Target.
func NewMemory() *Target {
	return &Target{fs: memfs.New()}
}

// New wraps an arbitrary billy filesystem, such as a chroot of a larger
// tree.
func New(fsys billy.Filesystem) *Target {
	return &Target{fs: fsys}
}

// Path returns a display path for rel, used in logs.
func (t *Target) Path(rel string) string {
	if t.osRoot == "" {
		return rel
	}
	return filepath.Join(t.osRoot, filepath.FromSlash(rel))
}

// MkdirAll creates rel and its parents. An existing directory is not an
// error.
func (t *Target) MkdirAll(rel string) error {
	if err := t.fs.MkdirAll(rel, dirPerm); err != nil {
		return fmt.Errorf("dest: mkdirall %q: %w", rel, err)
	}
	return nil
}

// Stat reports whether rel exists and, if so, its size. A missing file is
// (0, false, nil); any other probe failure is returned as an error.
func (t *Target) Stat(rel string) (size int64, exists bool, err error) {
	info, err := t.fs.Stat(rel)
	switch {
	case err == nil:
		return info.Size(), true, nil
	case errors.Is(err, os.ErrNotExist):
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("dest: stat %q: %w", rel, err)
	}
}

// IsDir reports whether rel exists and is a directory.
func (t *Target) IsDir(rel string) bool {
	info, err := t.fs.Stat(rel)
	return err == nil && info.IsDir()
}

// Create opens rel for writing, truncating any existing content so the file
// is overwritten in place.
func (t *Target) Create(rel string) (io.WriteCloser, error) {
	f, err := t.fs.OpenFile(rel, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return nil, fmt.Errorf("dest: create %q: %w", rel, err)
	}
	return f, nil
}

// Open opens rel for reading.
func (t *Target) Open(rel string) (io.ReadCloser, error) {
	f, err := t.fs.Open(rel)
	if err != nil {
		return nil, fmt.Errorf("dest: open %q: %w", rel, err)
	}
	return f, nil
}

// Remove deletes the file at rel.
func (t *Target) Remove(rel string) error {
	if err := t.fs.Remove(rel); err != nil {
		return fmt.Errorf("dest: remove %q: %w", rel, err)
	}
	return nil
}

// FreeSpace returns the bytes available to unprivileged writers on the
// filesystem holding the target. ok is false for non-OS targets and on
// platforms without statfs.
func (t *Target) FreeSpace() (free uint64, ok bool) {
	if t.osRoot == "" {
		return 0, false
	}
	return platform.FreeSpace(t.osRoot)
}
