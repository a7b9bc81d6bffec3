package event

// Observer is the callback form of the progress protocol, for hosts that
// prefer onProgress/onComplete over reading a channel.
type Observer interface {
	// OnProgress is called once per FileStarted event, in order.
	OnProgress(index, total int, path string)
	// OnComplete is called exactly once, after the last OnProgress.
	OnComplete()
}

// Dispatch reads events until the channel closes, forwarding progress to
// obs. It runs on the consumer's goroutine and blocks until the session's
// terminal signal.
func Dispatch(events <-chan Event, obs Observer) {
	for ev := range events {
		if ev.Type == FileStarted {
			obs.OnProgress(ev.Index, ev.Total, ev.Path)
		}
	}
	obs.OnComplete()
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are ignored.
type ObserverFuncs struct {
	Progress func(index, total int, path string)
	Complete func()
}

func (o ObserverFuncs) OnProgress(index, total int, path string) {
	if o.Progress != nil {
		o.Progress(index, total, path)
	}
}

func (o ObserverFuncs) OnComplete() {
	if o.Complete != nil {
		o.Complete()
	}
}
