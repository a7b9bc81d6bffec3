// Package bundle provides read-only access to the packaged asset tree.
//
// A bundle cannot be trusted to describe its own directory structure: some
// providers synthesize directories, some list nothing for them at all. The
// sync engine therefore never asks a provider whether an entry is a
// directory. It only lists names, opens files, and asks for sizes.
package bundle

import (
	"context"
	"io"
)

// Provider is the source side of a deployment. Paths are relative,
// forward-slash separated, and "" denotes the bundle root.
type Provider interface {
	// ReadDir lists the names of the immediate children of rel, in whatever
	// order the provider enumerates them.
	ReadDir(ctx context.Context, rel string) ([]string, error)

	// Open opens the file at rel for streamed reading.
	Open(ctx context.Context, rel string) (io.ReadCloser, error)

	// Size reports the byte length of the file at rel.
	Size(ctx context.Context, rel string) (int64, error)
}

// Join appends name to parent with a forward slash. Paths are kept verbatim;
// no cleaning is applied.
func Join(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
