package poller

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// fakeKernel is an in-memory, level-triggered epoll. Descriptors become ready
// through setReady.
type fakeKernel struct {
	mu       sync.Mutex
	nextFd   int
	interest map[int]map[int]RawEvent // epfd -> fd -> registration
	ready    map[int]uint32
	woken    map[int]bool
	closed   map[int]bool
	notify   chan struct{}

	failCreate  error
	failControl map[ControlOp]error
	failWait    error
	calls       []ControlOp
}

func newFakeKernel() *fakeKernel {
	return &fakeKernel{
		nextFd:      100,
		interest:    make(map[int]map[int]RawEvent),
		ready:       make(map[int]uint32),
		woken:       make(map[int]bool),
		closed:      make(map[int]bool),
		notify:      make(chan struct{}, 1),
		failControl: make(map[ControlOp]error),
	}
}

func (k *fakeKernel) signal() {
	select {
	case k.notify <- struct{}{}:
	default:
	}
}

func (k *fakeKernel) Create() (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.failCreate != nil {
		return -1, k.failCreate
	}
	fd := k.nextFd
	k.nextFd++
	k.interest[fd] = make(map[int]RawEvent)
	return fd, nil
}

func (k *fakeKernel) Control(epfd int, op ControlOp, fd int, ev RawEvent) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.calls = append(k.calls, op)
	if err := k.failControl[op]; err != nil {
		return err
	}
	set, ok := k.interest[epfd]
	if !ok || k.closed[epfd] {
		return unix.EBADF
	}
	_, registered := set[fd]
	switch op {
	case OpAdd:
		if registered {
			return unix.EEXIST
		}
		set[fd] = ev
	case OpMod:
		if !registered {
			return unix.ENOENT
		}
		set[fd] = ev
	case OpDel:
		if !registered {
			return unix.ENOENT
		}
		delete(set, fd)
	default:
		return unix.EINVAL
	}
	k.signal()
	return nil
}

func (k *fakeKernel) collect(epfd int, events []RawEvent) int {
	n := 0
	for fd, reg := range k.interest[epfd] {
		if n == len(events) {
			break
		}
		var got uint32
		if k.woken[fd] {
			got = epollIn
		} else {
			got = k.ready[fd] & (reg.Events | epollErr | epollHup)
		}
		if got != 0 {
			events[n] = RawEvent{Events: got, Data: reg.Data}
			n++
		}
	}
	return n
}

func (k *fakeKernel) Wait(epfd int, events []RawEvent, msec int) (int, error) {
	var deadline <-chan time.Time
	if msec > 0 {
		deadline = time.After(time.Duration(msec) * time.Millisecond)
	}
	for {
		k.mu.Lock()
		if k.failWait != nil {
			err := k.failWait
			k.mu.Unlock()
			return 0, err
		}
		if k.closed[epfd] {
			k.mu.Unlock()
			return 0, unix.EBADF
		}
		n := k.collect(epfd, events)
		k.mu.Unlock()
		if n > 0 || msec == 0 {
			return n, nil
		}
		select {
		case <-k.notify:
		case <-deadline:
			return 0, nil
		}
	}
}

func (k *fakeKernel) Close(fd int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed[fd] {
		return unix.EBADF
	}
	k.closed[fd] = true
	return nil
}

func (k *fakeKernel) NewWakeFd() (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	fd := k.nextFd
	k.nextFd++
	return fd, nil
}

func (k *fakeKernel) Wake(fd int) error {
	k.mu.Lock()
	k.woken[fd] = true
	k.mu.Unlock()
	k.signal()
	return nil
}

func (k *fakeKernel) Drain(fd int) error {
	k.mu.Lock()
	k.woken[fd] = false
	k.mu.Unlock()
	return nil
}

func (k *fakeKernel) setReady(fd int, events uint32) {
	k.mu.Lock()
	k.ready[fd] = events
	k.mu.Unlock()
	k.signal()
}

func (k *fakeKernel) registered(epfd, fd int) (RawEvent, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	ev, ok := k.interest[epfd][fd]
	return ev, ok
}

func (k *fakeKernel) isClosed(fd int) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.closed[fd]
}
