package bundle

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/klauspost/compress/zip"
)

// APKAssetPrefix is where Android packages keep bundled assets.
const APKAssetPrefix = "assets/"

// Zip serves a bundle from a zip archive (an APK is one). Only entries under
// the configured prefix are visible, with the prefix stripped. Children are
// listed in archive order.
type Zip struct {
	closer   io.Closer
	files    map[string]*zip.File
	children map[string][]string
}

// OpenZip opens the archive at path. The caller must Close the result.
func OpenZip(path, prefix string) (*Zip, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("bundle: open zip %q: %w", path, err)
	}
	z := NewZip(&rc.Reader, prefix)
	z.closer = rc
	return z, nil
}

// NewZip indexes an already opened archive.
func NewZip(r *zip.Reader, prefix string) *Zip {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	z := &Zip{
		files:    make(map[string]*zip.File),
		children: map[string][]string{"": nil},
	}
	seen := make(map[string]struct{})

	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		rel := strings.TrimPrefix(f.Name, prefix)
		isDir := strings.HasSuffix(rel, "/")
		rel = strings.TrimSuffix(rel, "/")
		if rel == "" {
			continue
		}

		parts := strings.Split(rel, "/")
		parent := ""
		for i, part := range parts {
			child := Join(parent, part)
			if _, ok := seen[child]; !ok {
				seen[child] = struct{}{}
				z.children[parent] = append(z.children[parent], part)
			}
			last := i == len(parts)-1
			if !last || isDir {
				if _, ok := z.children[child]; !ok {
					z.children[child] = nil
				}
			}
			parent = child
		}

		if !isDir {
			z.files[rel] = f
		}
	}
	return z
}

func (z *Zip) ReadDir(_ context.Context, rel string) ([]string, error) {
	names, ok := z.children[rel]
	if !ok {
		return nil, fmt.Errorf("bundle: readdir %q: %w", rel, fs.ErrNotExist)
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, nil
}

func (z *Zip) Open(_ context.Context, rel string) (io.ReadCloser, error) {
	f, ok := z.files[rel]
	if !ok {
		return nil, fmt.Errorf("bundle: open %q: %w", rel, fs.ErrNotExist)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("bundle: open %q: %w", rel, err)
	}
	return rc, nil
}

func (z *Zip) Size(_ context.Context, rel string) (int64, error) {
	f, ok := z.files[rel]
	if !ok {
		return 0, fmt.Errorf("bundle: stat %q: %w", rel, fs.ErrNotExist)
	}
	return int64(f.UncompressedSize64), nil //nolint:gosec // G115: archive sizes fit in int64
}

// Close releases the archive if OpenZip opened it.
func (z *Zip) Close() error {
	if z.closer == nil {
		return nil
	}
	return z.closer.Close()
}
