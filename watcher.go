package evpoll

import (
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/dreamans/evpoll/evlog"
	"github.com/dreamans/evpoll/poller"
	"github.com/dreamans/evpoll/util"
)

// Watcher owns a poller and calls each watched handle's Handler from a
// single Run goroutine.
type Watcher struct {
	mu       sync.Mutex
	poll     poller.EventPoller
	triggers []func()
	stopped  util.AtomicBool
	running  util.AtomicBool
	done     chan struct{}
}

func NewWatcher(opts *Options) (*Watcher, error) {
	if opts == nil {
		opts = NewOptions()
	}
	poll := opts.Poller
	if poll == nil {
		p, err := poller.New(opts.MaxEvents)
		if err != nil {
			return nil, err
		}
		poll = p
	}
	return &Watcher{
		poll: poll,
		done: make(chan struct{}),
	}, nil
}

// Watch registers h for mask and routes its events to handler.
func (w *Watcher) Watch(h poller.Handle, mask poller.EventMask, handler Handler) error {
	if w.stopped.IsSet() {
		return ErrWatcherStopped
	}
	return w.poll.AddWithTag(h, mask, handler)
}

// Rewatch changes the interest set of h, keeping its handler.
func (w *Watcher) Rewatch(h poller.Handle, mask poller.EventMask) error {
	if w.stopped.IsSet() {
		return ErrWatcherStopped
	}
	return w.poll.Modify(h, mask)
}

func (w *Watcher) Unwatch(h poller.Handle) error {
	if w.stopped.IsSet() {
		return ErrWatcherStopped
	}
	return w.poll.Remove(h)
}

// Trigger queues fn to run on the Run goroutine.
func (w *Watcher) Trigger(fn func()) error {
	if w.stopped.IsSet() {
		return ErrWatcherStopped
	}
	w.mu.Lock()
	w.triggers = append(w.triggers, fn)
	w.mu.Unlock()

	return w.poll.Wake()
}

// Run polls until Stop is called. It may be called only once.
func (w *Watcher) Run() error {
	if !w.running.SetOnce() {
		return errors.New("evpoll: watcher already running")
	}
	defer close(w.done)

	b := newRetryBackOff()
	for {
		events, err := w.poll.Poll(-1)
		if err != nil {
			if errors.Is(err, poller.ErrPollerClosed) || w.stopped.IsSet() {
				return nil
			}
			if errors.Is(err, poller.ErrInterrupted) || util.TemporaryErr(err) {
				continue
			}
			delay := b.NextBackOff()
			evlog.Errorf("[evpoll.Run]: %s, retrying in %s", err.Error(), delay)
			time.Sleep(delay)
			continue
		}
		b.Reset()

		for _, ev := range events {
			w.dispatch(ev)
		}
		w.doTriggers()
	}
}

// Stop closes the poller and waits for Run to return. Stopping twice is a
// no-op.
func (w *Watcher) Stop() error {
	if !w.stopped.SetOnce() {
		return nil
	}
	err := w.poll.Close()
	if w.running.IsSet() {
		<-w.done
	}
	return err
}

// newRetryBackOff paces Run after a failed Poll: 5ms doubling up to 500ms,
// for as long as the watcher runs.
func newRetryBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func (w *Watcher) dispatch(ev poller.PollEvent) {
	if !ev.Found() {
		evlog.Debugf("[evpoll.dispatch]: dropping %s for unregistered fd", ev.Types)
		return
	}
	handler, ok := ev.Tag.(Handler)
	if !ok || handler == nil {
		evlog.Debugf("[evpoll.dispatch]: fd %d has no handler", ev.Fd)
		return
	}
	handler.OnEvent(ev)
}

func (w *Watcher) doTriggers() {
	w.mu.Lock()
	fns := w.triggers
	w.triggers = nil
	w.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
