package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Synchronizer runs sync sessions in the background, at most one at a time.
// The zero value is ready to use.
type Synchronizer struct {
	mu     sync.Mutex
	active *Session
}

// Session is a sync running in the background.
type Session struct {
	ID     string
	cancel context.CancelFunc
	done   chan struct{}
	result Result
}

// Start launches a session and returns immediately. While a previous
// session is still running it returns ErrSessionActive and starts nothing.
func (s *Synchronizer) Start(ctx context.Context, cfg Config) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		select {
		case <-s.active.done:
		default:
			return nil, ErrSessionActive
		}
	}

	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	ctx, cancel := context.WithCancel(ctx)
	sess := &Session{
		ID:     cfg.SessionID,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.active = sess

	go func() {
		defer close(sess.done)
		defer cancel()
		sess.result = Run(ctx, cfg)
	}()
	return sess, nil
}

// Running reports whether a session is in progress.
func (s *Synchronizer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return false
	}
	select {
	case <-s.active.done:
		return false
	default:
		return true
	}
}

// Cancel asks the session to stop at the next item or read boundary.
func (sess *Session) Cancel() {
	sess.cancel()
}

// Done is closed once the session has finished and its events channel has
// been closed.
func (sess *Session) Done() <-chan struct{} {
	return sess.done
}

// Wait blocks until the session finishes and returns its result.
func (sess *Session) Wait() Result {
	<-sess.done
	return sess.result
}
