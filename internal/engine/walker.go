package engine

import (
	"context"
	"log/slog"

	"github.com/bamsammich/assetsync/internal/bundle"
	"github.com/bamsammich/assetsync/internal/dest"
	"github.com/bamsammich/assetsync/internal/event"
	"github.com/bamsammich/assetsync/internal/filter"
	"github.com/bamsammich/assetsync/internal/manifest"
	"github.com/bamsammich/assetsync/internal/stats"
)

// Worklist is the ordered list of leaf paths that need copying. It is fixed
// before the first byte is copied and never contains directories or
// duplicates.
type Worklist []string

// WalkerConfig configures a Walker.
type WalkerConfig struct {
	Source   bundle.Provider
	Target   *dest.Target
	Dirs     manifest.DirectorySet
	Detector *Detector
	Filter   *filter.Chain    // optional; excluded subtrees are not visited
	Events   *event.Channel   // optional
	Stats    *stats.Collector // optional
	Logger   *slog.Logger
	Manifest string // bundle path of the manifest; never deployed
	Session  string
	DryRun   bool // do not create directories on the target
}

// Walker traverses the bundle depth-first, mirrors its directories on the
// target, and collects stale leaves into a Worklist.
type Walker struct {
	cfg      WalkerConfig
	logger   *slog.Logger
	seen     map[string]struct{}
	failures []error
}

// NewWalker creates a Walker.
func NewWalker(cfg WalkerConfig) *Walker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Detector == nil {
		cfg.Detector = NewDetector(cfg.Source, cfg.Target, PolicySize, logger)
	}
	return &Walker{cfg: cfg, logger: logger}
}

// Walk builds the worklist for the subtree at root. Classification comes
// from the manifest alone. A subtree that cannot be listed is skipped and
// recorded; the walk carries on with its siblings. The only error returned
// is the context's.
func (w *Walker) Walk(ctx context.Context, root string) (Worklist, error) {
	w.seen = make(map[string]struct{})
	w.failures = nil

	wl := Worklist{}
	if root != "" {
		w.ensureDir(root)
	}
	if err := w.walkDir(ctx, root, &wl); err != nil {
		return wl, err
	}

	if w.cfg.Stats != nil {
		w.cfg.Stats.SetTotal(int64(len(wl)))
	}
	w.cfg.Events.Emit(event.Event{
		Type:    event.ScanComplete,
		Session: w.cfg.Session,
		Total:   len(wl),
	})
	w.logger.Debug("walk complete", "root", root, "worklist", len(wl), "failures", len(w.failures))
	return wl, nil
}

// Failures returns the subtree and directory failures seen by the last Walk.
func (w *Walker) Failures() []error {
	return w.failures
}

func (w *Walker) walkDir(ctx context.Context, dir string, wl *Worklist) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	names, err := w.cfg.Source.ReadDir(ctx, dir)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		w.fail(newError(DirectoryListingFailed, dir, err))
		return nil
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := bundle.Join(dir, name)
		if _, dup := w.seen[rel]; dup {
			continue
		}
		w.seen[rel] = struct{}{}

		isDir := w.cfg.Dirs.Classify(rel) == manifest.Directory
		if !w.cfg.Filter.Match(rel, isDir) {
			w.exclude(rel, isDir)
			continue
		}

		if isDir {
			w.ensureDir(rel)
			if err := w.walkDir(ctx, rel, wl); err != nil {
				return err
			}
			continue
		}

		if rel == w.cfg.Manifest {
			continue
		}

		reason := w.cfg.Detector.Check(ctx, rel)
		if !reason.NeedsCopy() {
			w.skip(rel, reason)
			continue
		}
		*wl = append(*wl, rel)
	}
	return nil
}

// ensureDir mirrors a bundle directory on the target. MkdirAll is
// idempotent, so DirCreated means "present", not "new". A failure is
// recorded and the walk still descends; the files below will fail on their
// own.
func (w *Walker) ensureDir(rel string) {
	if w.cfg.DryRun {
		return
	}
	if err := w.cfg.Target.MkdirAll(rel); err != nil {
		w.fail(newError(DestinationCreateFailed, rel, err))
		return
	}
	if w.cfg.Stats != nil {
		w.cfg.Stats.AddDirsCreated(1)
	}
	w.cfg.Events.Emit(event.Event{
		Type:    event.DirCreated,
		Session: w.cfg.Session,
		Path:    rel,
	})
}

func (w *Walker) skip(rel string, reason Reason) {
	w.logger.Debug("up to date", "path", rel, "reason", reason.String())
	if w.cfg.Stats != nil {
		w.cfg.Stats.AddFilesSkipped(1)
	}
	w.cfg.Events.Emit(event.Event{
		Type:    event.FileSkipped,
		Session: w.cfg.Session,
		Path:    rel,
		Reason:  reason.String(),
	})
}

func (w *Walker) exclude(rel string, isDir bool) {
	w.logger.Debug("excluded by filter", "path", rel, "dir", isDir)
	if isDir {
		return
	}
	w.skip(rel, Excluded)
}

func (w *Walker) fail(err *Error) {
	w.logger.Error("walk failed", "kind", err.Kind.String(), "path", w.cfg.Target.Path(err.Path), "error", err.Err)
	w.failures = append(w.failures, err)
}
