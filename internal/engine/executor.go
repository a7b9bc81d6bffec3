package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/bamsammich/assetsync/internal/bundle"
	"github.com/bamsammich/assetsync/internal/dest"
	"github.com/bamsammich/assetsync/internal/event"
	"github.com/bamsammich/assetsync/internal/stats"
)

// DefaultBufferSize is the copy buffer used when none is configured.
const DefaultBufferSize = 32 * 1024

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	Source     bundle.Provider
	Target     *dest.Target
	BufferSize int
	Limiter    *rate.Limiter    // optional shared bandwidth cap
	Events     *event.Channel   // optional
	Stats      *stats.Collector // optional
	Logger     *slog.Logger
	Session    string
	DryRun     bool
}

// Executor copies worklist items one at a time, in order.
type Executor struct {
	cfg    ExecutorConfig
	logger *slog.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{cfg: cfg, logger: logger}
}

// Run copies every item of wl. A FileStarted event precedes each item, so
// progress indices are 0..len(wl)-1 in order and the total never changes.
// Per-item failures are logged, reported, and returned; they never stop the
// run. Cancellation stops the run before the next item or read, and the
// interrupted item is neither counted nor left half-written.
func (x *Executor) Run(ctx context.Context, wl Worklist) []error {
	var failures []error
	buf := make([]byte, x.cfg.BufferSize)
	total := len(wl)

	for i, rel := range wl {
		if ctx.Err() != nil {
			break
		}

		x.cfg.Events.Emit(event.Event{
			Type:    event.FileStarted,
			Session: x.cfg.Session,
			Path:    rel,
			Index:   i,
			Total:   total,
		})

		n, err := x.copyOne(ctx, rel, buf)
		if err != nil && ctx.Err() != nil {
			break
		}
		if err != nil {
			failures = append(failures, err)
			x.logger.Error("copy failed",
				"kind", KindOf(err).String(),
				"path", x.cfg.Target.Path(rel),
				"error", errors.Unwrap(err),
			)
			if x.cfg.Stats != nil {
				x.cfg.Stats.AddFilesFailed(1)
			}
			x.cfg.Events.Emit(event.Event{
				Type:    event.FileFailed,
				Session: x.cfg.Session,
				Path:    rel,
				Index:   i,
				Total:   total,
				Error:   err,
			})
			continue
		}

		if x.cfg.Stats != nil {
			x.cfg.Stats.AddFilesCopied(1)
		}
		x.cfg.Events.Emit(event.Event{
			Type:    event.FileCompleted,
			Session: x.cfg.Session,
			Path:    rel,
			Index:   i,
			Total:   total,
			Size:    n,
		})
	}
	return failures
}

// copyOne streams one file. Any partial destination file is removed on
// failure.
func (x *Executor) copyOne(ctx context.Context, rel string, buf []byte) (int64, error) {
	if x.cfg.DryRun {
		x.logger.Info("would copy", "path", x.cfg.Target.Path(rel))
		return 0, nil
	}

	rc, err := x.cfg.Source.Open(ctx, rel)
	if err != nil {
		return 0, newError(SourceOpenFailed, rel, err)
	}
	defer rc.Close()

	w, err := x.cfg.Target.Create(rel)
	if err != nil {
		return 0, newError(DestinationCreateFailed, rel, err)
	}

	n, err := x.stream(ctx, rel, w, newRateLimitedReader(ctx, rc, x.cfg.Limiter), buf)
	if closeErr := w.Close(); err == nil && closeErr != nil {
		err = newError(DestinationWriteFailed, rel, closeErr)
	}
	if err != nil {
		if rmErr := x.cfg.Target.Remove(rel); rmErr != nil {
			x.logger.Debug("remove partial file", "path", x.cfg.Target.Path(rel), "error", rmErr)
		}
		return n, err
	}

	x.logger.Debug("copied", "path", x.cfg.Target.Path(rel), "bytes", n)
	return n, nil
}

func (x *Executor) stream(ctx context.Context, rel string, w io.Writer, r io.Reader, buf []byte) (int64, error) {
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, newError(ReadInterrupted, rel, err)
		}

		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return written, newError(DestinationWriteFailed, rel, werr)
			}
			written += int64(n)
			if x.cfg.Stats != nil {
				x.cfg.Stats.AddBytesCopied(int64(n))
			}
		}
		if errors.Is(rerr, io.EOF) {
			return written, nil
		}
		if rerr != nil {
			return written, newError(ReadInterrupted, rel, rerr)
		}
	}
}
