// Package bridge is the polled host surface: a non-blocking trigger for the
// asset sync plus the dialog state machine a host loop checks once per frame.
package bridge

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bamsammich/assetsync/internal/dialog"
	"github.com/bamsammich/assetsync/internal/engine"
	"github.com/bamsammich/assetsync/internal/event"
)

// Dialog states reported by DialogState.
const (
	DialogPending   = -1
	DialogAccepted  = 0
	DialogCancelled = 1
)

// Config configures a Bridge.
type Config struct {
	// Sync is the session template. Events and Stats are replaced on every
	// CopyAssets call.
	Sync         engine.Config
	Observer     event.Observer // optional
	Prompter     dialog.Prompter
	EventsBuffer int
	Logger       *slog.Logger
}

// Bridge is safe for concurrent use.
type Bridge struct {
	ctx    context.Context
	cfg    Config
	logger *slog.Logger
	syncer engine.Synchronizer

	mu      sync.Mutex
	session *engine.Session
	state   int
	value   string
	gen     int // bumped by ShowDialog so stale answers are dropped
}

// New creates a Bridge. ctx bounds every session and dialog it starts.
func New(ctx context.Context, cfg Config) *Bridge {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{ctx: ctx, cfg: cfg, logger: logger, state: DialogPending}
}

// CopyAssets starts a sync session and returns immediately. Progress goes to
// the configured Observer, which sees OnComplete exactly once per session.
// It returns engine.ErrSessionActive while a previous session runs.
func (b *Bridge) CopyAssets() error {
	cfg := b.cfg.Sync
	cfg.Events = event.NewChannel(b.cfg.EventsBuffer)
	cfg.Stats = nil
	cfg.SessionID = ""

	sess, err := b.syncer.Start(b.ctx, cfg)
	if err != nil {
		return err
	}
	b.logger.Info("asset sync started", "session", sess.ID)

	obs := b.cfg.Observer
	if obs == nil {
		obs = event.ObserverFuncs{}
	}
	go event.Dispatch(cfg.Events.Events(), obs)

	b.mu.Lock()
	b.session = sess
	b.mu.Unlock()
	return nil
}

// SyncRunning reports whether a session started by CopyAssets is in progress.
func (b *Bridge) SyncRunning() bool {
	return b.syncer.Running()
}

// LastSession returns the most recent session started by CopyAssets, or nil.
func (b *Bridge) LastSession() *engine.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session
}

// ShowDialog opens a text-entry dialog without blocking. The state is reset
// to DialogPending until the user answers.
func (b *Bridge) ShowDialog(req dialog.Request) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.state = DialogPending
	b.value = ""
	b.mu.Unlock()

	go func() {
		res, err := b.cfg.Prompter.Prompt(b.ctx, req)
		if err != nil {
			b.logger.Warn("dialog failed", "caption", req.Caption, "error", err)
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if gen != b.gen {
			return
		}
		if err == nil && res.Accepted {
			b.state = DialogAccepted
			b.value = res.Text
			return
		}
		b.state = DialogCancelled
		b.value = ""
	}()
}

// DialogState returns DialogPending, DialogAccepted or DialogCancelled.
func (b *Bridge) DialogState() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// DialogValue returns the accepted text and resets the state to
// DialogPending.
func (b *Bridge) DialogValue() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = DialogPending
	return b.value
}
