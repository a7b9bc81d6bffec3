package bridge

import (
	"context"

	"github.com/bamsammich/assetsync/internal/bundle"
)

// gatedProvider blocks every ReadDir until release is closed.
type gatedProvider struct {
	bundle.Provider
	release chan struct{}
}

func (p *gatedProvider) ReadDir(ctx context.Context, rel string) ([]string, error) {
	select {
	case <-p.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return p.Provider.ReadDir(ctx, rel)
}
