// Package evpoll runs a poller.Poller in a loop and dispatches readiness
// events to per-handle handlers.
package evpoll

import (
	"errors"

	"github.com/dreamans/evpoll/poller"
)

var ErrWatcherStopped = errors.New("evpoll: watcher stopped")

// Handler receives the events of one watched handle. It runs on the Run
// goroutine and must not block it for long.
type Handler interface {
	OnEvent(ev poller.PollEvent)
}

type HandlerFunc func(ev poller.PollEvent)

func (f HandlerFunc) OnEvent(ev poller.PollEvent) {
	f(ev)
}

type Options struct {
	// MaxEvents is passed to poller.New when Poller is nil.
	MaxEvents int
	// Poller lets the caller supply the poller. The watcher takes ownership
	// and closes it on Stop.
	Poller poller.EventPoller
}

func NewOptions() *Options {
	return &Options{MaxEvents: 16}
}

func (opts *Options) SetMaxEvents(n int) *Options {
	opts.MaxEvents = n
	return opts
}

func (opts *Options) SetPoller(p poller.EventPoller) *Options {
	opts.Poller = p
	return opts
}
