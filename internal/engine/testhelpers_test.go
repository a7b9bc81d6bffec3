package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/assetsync/internal/bundle"
	"github.com/bamsammich/assetsync/internal/dest"
	"github.com/bamsammich/assetsync/internal/event"
)

// texturesBundle is the two-level tree used throughout the engine tests.
func texturesBundle() fstest.MapFS {
	return fstest.MapFS{
		"index.txt":          {Data: []byte("textures\ntextures/sub\n")},
		"textures/sub/a.png": {Data: bytes.Repeat([]byte("a"), 40)},
		"textures/b.png":     {Data: bytes.Repeat([]byte("b"), 10)},
	}
}

// faultyProvider wraps a Provider and injects failures per path.
type faultyProvider struct {
	bundle.Provider
	readDirErr map[string]error
	openErr    map[string]error
	sizeErr    map[string]error
	readErr    map[string]error // returned after the first byte of content
}

func (p *faultyProvider) ReadDir(ctx context.Context, rel string) ([]string, error) {
	if err := p.readDirErr[rel]; err != nil {
		return nil, err
	}
	return p.Provider.ReadDir(ctx, rel)
}

func (p *faultyProvider) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	if err := p.openErr[rel]; err != nil {
		return nil, err
	}
	rc, err := p.Provider.Open(ctx, rel)
	if err != nil {
		return nil, err
	}
	if rerr := p.readErr[rel]; rerr != nil {
		return &brokenReader{rc: rc, err: rerr}, nil
	}
	return rc, nil
}

func (p *faultyProvider) Size(ctx context.Context, rel string) (int64, error) {
	if err := p.sizeErr[rel]; err != nil {
		return 0, err
	}
	return p.Provider.Size(ctx, rel)
}

// repeatingProvider lists every child of the given directories twice, as a
// zip with a repeated entry would.
type repeatingProvider struct {
	bundle.Provider
	dirs map[string]bool
}

func (p *repeatingProvider) ReadDir(ctx context.Context, rel string) ([]string, error) {
	names, err := p.Provider.ReadDir(ctx, rel)
	if err != nil || !p.dirs[rel] {
		return names, err
	}
	return append(names, names...), nil
}

// brokenReader yields one byte, then fails.
type brokenReader struct {
	rc   io.ReadCloser
	err  error
	done bool
}

func (b *brokenReader) Read(p []byte) (int, error) {
	if b.done || len(p) == 0 {
		return 0, b.err
	}
	b.done = true
	return b.rc.Read(p[:1])
}

func (b *brokenReader) Close() error { return b.rc.Close() }

// blockingProvider holds every Open until release is closed or ctx ends.
type blockingProvider struct {
	bundle.Provider
	opened  chan string
	release chan struct{}
}

func newBlockingProvider(p bundle.Provider) *blockingProvider {
	return &blockingProvider{
		Provider: p,
		opened:   make(chan string, 16),
		release:  make(chan struct{}),
	}
}

func (p *blockingProvider) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	// The manifest is read before the walk and is never held.
	if strings.HasSuffix(rel, ".txt") {
		return p.Provider.Open(ctx, rel)
	}
	p.opened <- rel
	select {
	case <-p.release:
		return p.Provider.Open(ctx, rel)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var errInjected = errors.New("injected failure")

// collect drains a closed channel.
func collect(ch *event.Channel) []event.Event {
	var out []event.Event
	for ev := range ch.Events() {
		out = append(out, ev)
	}
	return out
}

func ofType(events []event.Event, typ event.Type) []event.Event {
	var out []event.Event
	for _, ev := range events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func writeFile(t *testing.T, dst *dest.Target, rel string, data []byte) {
	t.Helper()
	w, err := dst.Create(rel)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func readFile(t *testing.T, dst *dest.Target, rel string) []byte {
	t.Helper()
	rc, err := dst.Open(rel)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}
