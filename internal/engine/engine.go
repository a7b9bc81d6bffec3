// Package engine deploys a bundle onto a destination tree: it walks the
// bundle, decides which leaves are stale, and copies them in order while
// reporting progress.
package engine

import (
	"context"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bamsammich/assetsync/internal/bundle"
	"github.com/bamsammich/assetsync/internal/dest"
	"github.com/bamsammich/assetsync/internal/event"
	"github.com/bamsammich/assetsync/internal/filter"
	"github.com/bamsammich/assetsync/internal/manifest"
	"github.com/bamsammich/assetsync/internal/stats"
)

// Config describes a sync session.
type Config struct {
	Source     bundle.Provider
	Target     *dest.Target
	Manifest   string // bundle path of the directory manifest; default manifest.DefaultName
	Root       string // bundle subtree to deploy; "" is the whole bundle
	Policy     Policy
	BufferSize int
	BWLimit    int64 // bytes/sec; 0 is unlimited
	DryRun     bool
	Filter     *filter.Chain // optional include/exclude rules

	Events    *event.Channel   // closed when Run returns; optional
	EventLog  *slog.Logger     // optional; receives every event, dropped or not
	Stats     *stats.Collector // optional; created when nil
	Logger    *slog.Logger
	SessionID string // generated when empty
}

// Result is the outcome of a sync session.
type Result struct {
	Session  string
	Worklist Worklist
	Stats    stats.Snapshot
	Failures []error // per-item and per-subtree failures, all non-fatal
	Err      error   // only ever the context's error
}

// OK reports whether the session finished without any failure.
func (r Result) OK() bool {
	return r.Err == nil && len(r.Failures) == 0
}

// Run executes one sync session, blocking until complete. It always closes
// cfg.Events before returning, and that close is the completion signal
// observers rely on.
func Run(ctx context.Context, cfg Config) (res Result) {
	defer cfg.Events.Close()

	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.Manifest == "" {
		cfg.Manifest = manifest.DefaultName
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session", cfg.SessionID)
	if cfg.EventLog != nil {
		if cfg.Events == nil {
			cfg.Events = event.NewChannel(0)
		}
		cfg.Events.SetRecorder(event.Recorder(cfg.EventLog))
	}

	res.Session = cfg.SessionID
	cfg.Events.Emit(event.Event{Type: event.SessionStarted, Session: cfg.SessionID})
	defer func() {
		res.Stats = cfg.Stats.Snapshot()
		cfg.Events.Emit(event.Event{
			Type:    event.SessionComplete,
			Session: cfg.SessionID,
			Total:   len(res.Worklist),
			Error:   res.Err,
		})
	}()

	logger.Info("sync started", "root", cfg.Root, "policy", cfg.Policy.String(), "dry_run", cfg.DryRun)

	dirs, err := manifest.Load(ctx, cfg.Source, cfg.Manifest, logger)
	if err != nil {
		res.Failures = append(res.Failures, newError(ManifestUnreadable, cfg.Manifest, err))
	}

	walker := NewWalker(WalkerConfig{
		Source:   cfg.Source,
		Target:   cfg.Target,
		Dirs:     dirs,
		Detector: NewDetector(cfg.Source, cfg.Target, cfg.Policy, logger),
		Filter:   cfg.Filter,
		Events:   cfg.Events,
		Stats:    cfg.Stats,
		Logger:   logger,
		Manifest: cfg.Manifest,
		Session:  cfg.SessionID,
		DryRun:   cfg.DryRun,
	})
	wl, err := walker.Walk(ctx, cfg.Root)
	res.Failures = append(res.Failures, walker.Failures()...)
	if err != nil {
		res.Err = err
		logger.Warn("sync cancelled during walk", "error", err)
		return res
	}
	res.Worklist = wl

	if !cfg.DryRun {
		checkFreeSpace(ctx, cfg.Source, cfg.Target, wl, logger)
	}

	var limiter *rate.Limiter
	if cfg.BWLimit > 0 {
		limiter = NewBWLimiter(cfg.BWLimit)
	}
	exec := NewExecutor(ExecutorConfig{
		Source:     cfg.Source,
		Target:     cfg.Target,
		BufferSize: cfg.BufferSize,
		Limiter:    limiter,
		Events:     cfg.Events,
		Stats:      cfg.Stats,
		Logger:     logger,
		Session:    cfg.SessionID,
		DryRun:     cfg.DryRun,
	})
	res.Failures = append(res.Failures, exec.Run(ctx, wl)...)

	if err := ctx.Err(); err != nil {
		res.Err = err
		logger.Warn("sync cancelled", "error", err)
		return res
	}

	logger.Info("sync complete", "worklist", len(wl), "failures", len(res.Failures))
	return res
}

// checkFreeSpace warns when the worklist will not fit on the target. It is
// advisory only: sizes that cannot be probed are left out of the estimate
// and the copy always proceeds.
func checkFreeSpace(ctx context.Context, src bundle.Provider, dst *dest.Target, wl Worklist, logger *slog.Logger) {
	free, ok := dst.FreeSpace()
	if !ok || len(wl) == 0 {
		return
	}
	var need int64
	for _, rel := range wl {
		if ctx.Err() != nil {
			return
		}
		if n, err := src.Size(ctx, rel); err == nil {
			need += n
		}
	}
	if need > 0 && uint64(need) > free {
		logger.Warn("destination may run out of space",
			"need", stats.FormatBytes(need),
			"free", humanize.IBytes(free),
		)
	}
}
