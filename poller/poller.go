// Package poller wraps a Linux epoll instance: it tracks which handles are
// registered with which interest set and turns the kernel's ready list into
// typed PollEvent values.
package poller

import (
	"fmt"
	"sync"

	"github.com/dreamans/evpoll/evlog"
)

// EventPoller is the surface of *Poller.
type EventPoller interface {
	Add(h Handle, mask EventMask) error
	AddWithTag(h Handle, mask EventMask, tag interface{}) error
	Modify(h Handle, mask EventMask) error
	ModifyWithTag(h Handle, mask EventMask, tag interface{}) error
	Remove(h Handle) error
	Poll(timeoutMillis int) ([]PollEvent, error)
	Wake() error
	Close() error
}

// PollEvent is one ready descriptor reported by Poll. Handle and Tag are nil
// when the descriptor was no longer registered by the time the event was
// decoded, which happens when Remove races with Poll.
type PollEvent struct {
	Source *Poller
	Handle Handle
	Fd     int
	Types  EventMask
	Tag    interface{}
}

// Found reports whether the event was matched to a live registration.
func (ev PollEvent) Found() bool {
	return ev.Handle != nil
}

func (ev PollEvent) String() string {
	return fmt.Sprintf("(PollEvent fd=%d handle=%v types=%s)", ev.Fd, ev.Handle, ev.Types)
}

// Poller owns one epoll instance and the registrations made against it.
//
// Add, Modify, Remove and Close may be called concurrently with each other
// and with Poll. Poll calls are serialized: a second caller waits for the
// first to return.
type Poller struct {
	mu       sync.Mutex
	kernel   Kernel
	resolver Resolver
	epfd     int
	wakeFd   int
	regs     *registry
	closed   bool

	// pollMu is held for the whole of Poll, including the blocking wait, and
	// owns events.
	pollMu sync.Mutex
	events []RawEvent
}

var _ EventPoller = (*Poller)(nil)

// New creates a Poller on the real kernel that returns at most maxEvents
// events per Poll.
func New(maxEvents int) (*Poller, error) {
	return Create(NewOptions().SetMaxEvents(maxEvents))
}

func Create(opts *Options) (*Poller, error) {
	if opts == nil {
		opts = NewOptions()
	}
	maxEvents := opts.MaxEvents
	if maxEvents < 1 {
		return nil, fmt.Errorf("%w: maxEvents must be at least 1, got %d", ErrCreation, maxEvents)
	}
	kernel := opts.Kernel
	if kernel == nil {
		kernel = DefaultKernel()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = NativeResolver{}
	}

	epfd, err := kernel.Create()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreation, err)
	}
	wakeFd, err := kernel.NewWakeFd()
	if err != nil {
		_ = kernel.Close(epfd)
		return nil, fmt.Errorf("%w: %w", ErrCreation, err)
	}
	wake := RawEvent{Events: Encode(NewEventMask(EventIn)), Data: fdData(wakeFd)}
	if err := kernel.Control(epfd, OpAdd, wakeFd, wake); err != nil {
		_ = kernel.Close(wakeFd)
		_ = kernel.Close(epfd)
		return nil, fmt.Errorf("%w: %w", ErrCreation, err)
	}

	evlog.Debugf("[poller.Create]: epfd %d, maxEvents %d", epfd, maxEvents)

	return &Poller{
		kernel:   kernel,
		resolver: resolver,
		epfd:     epfd,
		wakeFd:   wakeFd,
		regs:     newRegistry(),
		events:   make([]RawEvent, maxEvents),
	}, nil
}

// MaxEvents returns the per-Poll event limit.
func (p *Poller) MaxEvents() int {
	return len(p.events)
}

func (p *Poller) Add(h Handle, mask EventMask) error {
	return p.AddWithTag(h, mask, nil)
}

// AddWithTag registers h for mask. tag is returned with every PollEvent for h.
func (p *Poller) AddWithTag(h Handle, mask EventMask, tag interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPollerClosed
	}
	if err := checkHandle(h); err != nil {
		return err
	}
	if _, err := p.regs.lookupByHandle(h); err == nil {
		return ErrDuplicateRegistration
	}
	fd, err := resolve(p.resolver, h)
	if err != nil {
		return err
	}

	ev := RawEvent{Events: Encode(mask), Data: fdData(fd)}
	if err := p.kernel.Control(p.epfd, OpAdd, fd, ev); err != nil {
		return &ControlError{Op: OpAdd, Fd: fd, Err: err}
	}
	if err := p.regs.insert(h, fd, mask, tag); err != nil {
		return err
	}

	evlog.Debugf("[poller.Add]: fd %d, mask %s", fd, mask)
	return nil
}

// Modify replaces the interest set of h and keeps its tag.
func (p *Poller) Modify(h Handle, mask EventMask) error {
	return p.modify(h, mask, nil, false)
}

// ModifyWithTag replaces both the interest set and the tag of h.
func (p *Poller) ModifyWithTag(h Handle, mask EventMask, tag interface{}) error {
	return p.modify(h, mask, tag, true)
}

func (p *Poller) modify(h Handle, mask EventMask, tag interface{}, setTag bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPollerClosed
	}
	reg, err := p.regs.lookupByHandle(h)
	if err != nil {
		return err
	}
	if !p.regs.owns(reg) {
		return fmt.Errorf("%w: fd %d was reused by another handle", ErrNotRegistered, reg.Fd)
	}

	ev := RawEvent{Events: Encode(mask), Data: fdData(reg.Fd)}
	if err := p.kernel.Control(p.epfd, OpMod, reg.Fd, ev); err != nil {
		return &ControlError{Op: OpMod, Fd: reg.Fd, Err: err}
	}
	_ = p.regs.updateMask(h, mask)
	if setTag {
		_ = p.regs.updateTag(h, tag)
	}

	evlog.Debugf("[poller.Modify]: fd %d, mask %s", reg.Fd, mask)
	return nil
}

// Remove deregisters h. The handle is forgotten even when the kernel call
// fails; the returned ControlError is then informational. If h was closed
// without being removed and its descriptor number has since been registered
// through another handle, only the table entry is dropped.
func (p *Poller) Remove(h Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPollerClosed
	}
	reg, owned, err := p.regs.remove(h)
	if err != nil {
		return err
	}
	if !owned {
		// the number now belongs to a newer registration; the kernel dropped
		// this one when the descriptor was closed
		evlog.Debugf("[poller.Remove]: fd %d reused, skipping deregister", reg.Fd)
		return nil
	}
	if err := p.kernel.Control(p.epfd, OpDel, reg.Fd, RawEvent{}); err != nil {
		return &ControlError{Op: OpDel, Fd: reg.Fd, Err: err}
	}

	evlog.Debugf("[poller.Remove]: fd %d", reg.Fd)
	return nil
}

// Registration returns a copy of the registration for h.
func (p *Poller) Registration(h Handle) (Registration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return Registration{}, ErrPollerClosed
	}
	reg, err := p.regs.lookupByHandle(h)
	if err != nil {
		return Registration{}, err
	}
	return *reg, nil
}

// Len returns the number of live registrations.
func (p *Poller) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.regs.len()
}

// Poll waits up to timeoutMillis for registered descriptors to become ready.
// Zero returns immediately and a negative value blocks until something is
// ready, Wake is called or the poller is closed.
//
// A timeout, or a Wake, yields an empty slice and no error. An interrupted
// wait yields ErrInterrupted; Poll does not retry it. Events are returned in
// the order the kernel reported them.
func (p *Poller) Poll(timeoutMillis int) ([]PollEvent, error) {
	p.pollMu.Lock()
	defer p.pollMu.Unlock()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPollerClosed
	}
	epfd := p.epfd
	p.mu.Unlock()

	n, err := p.kernel.Wait(epfd, p.events, timeoutMillis)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPollerClosed
	}

	events := make([]PollEvent, 0, n)
	for i := 0; i < n; i++ {
		raw := p.events[i]
		fd := dataFd(raw.Data)
		if fd == p.wakeFd {
			if err := p.kernel.Drain(p.wakeFd); err != nil {
				evlog.Warningf("[poller.Poll]: drain wake fd %d: %s", p.wakeFd, err.Error())
			}
			continue
		}

		ev := PollEvent{Source: p, Fd: fd, Types: Decode(raw.Events)}
		if reg, ok := p.regs.lookupByFd(fd); ok {
			ev.Handle = reg.Handle
			ev.Tag = reg.Tag
		}
		events = append(events, ev)
	}
	return events, nil
}

// Wake makes a blocked Poll return an empty slice. A Wake with no Poll in
// progress is consumed by the next Poll.
func (p *Poller) Wake() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPollerClosed
	}
	return p.kernel.Wake(p.wakeFd)
}

// Close deregisters every remaining handle, without closing it, and releases
// the epoll instance. A Poll blocked at the time returns ErrPollerClosed.
// Calling Close again is a no-op.
func (p *Poller) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true

	for _, reg := range p.regs.all() {
		if err := p.kernel.Control(p.epfd, OpDel, reg.Fd, RawEvent{}); err != nil {
			evlog.Warningf("[poller.Close]: deregister fd %d: %s", reg.Fd, err.Error())
		}
	}
	p.regs = newRegistry()

	if err := p.kernel.Wake(p.wakeFd); err != nil {
		evlog.Warningf("[poller.Close]: wake fd %d: %s", p.wakeFd, err.Error())
	}
	p.mu.Unlock()

	// wait out any Poll still inside the kernel
	p.pollMu.Lock()
	defer p.pollMu.Unlock()

	if err := p.kernel.Close(p.wakeFd); err != nil {
		evlog.Warningf("[poller.Close]: close wake fd %d: %s", p.wakeFd, err.Error())
	}
	if err := p.kernel.Close(p.epfd); err != nil {
		evlog.Errorf("[poller.Close]: close epfd %d: %s", p.epfd, err.Error())
		return err
	}

	evlog.Debugf("[poller.Close]: epfd %d", p.epfd)
	return nil
}
