package bundle

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// FS adapts any fs.FS (os.DirFS, embed.FS, fstest.MapFS) to a Provider.
// Children are listed in lexical order, as fs.ReadDir guarantees.
type FS struct {
	fsys fs.FS
}

// NewFS wraps fsys.
func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// NewDir returns a provider over a directory on disk.
func NewDir(root string) *FS {
	return NewFS(os.DirFS(root))
}

func (f *FS) ReadDir(_ context.Context, rel string) ([]string, error) {
	entries, err := fs.ReadDir(f.fsys, fsName(rel))
	if err != nil {
		return nil, fmt.Errorf("bundle: readdir %q: %w", rel, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (f *FS) Open(_ context.Context, rel string) (io.ReadCloser, error) {
	file, err := f.fsys.Open(fsName(rel))
	if err != nil {
		return nil, fmt.Errorf("bundle: open %q: %w", rel, err)
	}
	return file, nil
}

func (f *FS) Size(_ context.Context, rel string) (int64, error) {
	info, err := fs.Stat(f.fsys, fsName(rel))
	if err != nil {
		return 0, fmt.Errorf("bundle: stat %q: %w", rel, err)
	}
	return info.Size(), nil
}

// fsName maps the bundle root to the name fs.FS expects.
func fsName(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}
