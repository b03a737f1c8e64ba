package poller

import (
	"errors"
	"fmt"
	"reflect"
	"syscall"
)

// Handle is whatever the caller registers: an *os.File, a net.Conn, an Fd...
// The poller keys registrations on it, so it must be comparable. Handles are
// borrowed: the poller never closes them.
type Handle interface{}

// Fd is a raw descriptor used directly as a handle.
type Fd int

// Resolver extracts the descriptor backing a handle.
type Resolver interface {
	Resolve(h Handle) (int, error)
}

type ResolverFunc func(h Handle) (int, error)

func (f ResolverFunc) Resolve(h Handle) (int, error) {
	return f(h)
}

type fder interface {
	Fd() uintptr
}

// NativeResolver understands Fd values, syscall.Conn implementations (files,
// sockets, pipes) and anything exposing Fd() uintptr. syscall.Conn is
// preferred because (*os.File).Fd puts the file into blocking mode.
type NativeResolver struct{}

func (NativeResolver) Resolve(h Handle) (int, error) {
	if err := checkHandle(h); err != nil {
		return -1, err
	}

	fd := -1
	switch v := h.(type) {
	case Fd:
		fd = int(v)
	case syscall.Conn:
		rc, err := v.SyscallConn()
		if err != nil {
			return -1, fmt.Errorf("%w: %w", ErrResolution, err)
		}
		err = rc.Control(func(sysfd uintptr) {
			fd = int(sysfd)
		})
		if err != nil {
			return -1, fmt.Errorf("%w: %w", ErrResolution, err)
		}
	case fder:
		fd = int(v.Fd())
	default:
		return -1, fmt.Errorf("%w: handle of type %T exposes no descriptor", ErrResolution, h)
	}

	if fd < 0 {
		return -1, fmt.Errorf("%w: invalid descriptor %d", ErrResolution, fd)
	}
	return fd, nil
}

func isComparable(h Handle) bool {
	return h != nil && reflect.TypeOf(h).Comparable()
}

// checkHandle rejects handles that cannot key a registration.
func checkHandle(h Handle) error {
	if h == nil {
		return fmt.Errorf("%w: nil handle", ErrResolution)
	}
	if !isComparable(h) {
		return fmt.Errorf("%w: handle of type %T is not comparable", ErrResolution, h)
	}
	return nil
}

// resolve runs r behind the handle checks every resolver needs.
func resolve(r Resolver, h Handle) (int, error) {
	if err := checkHandle(h); err != nil {
		return -1, err
	}
	fd, err := r.Resolve(h)
	if err != nil {
		if !errors.Is(err, ErrResolution) {
			err = fmt.Errorf("%w: %w", ErrResolution, err)
		}
		return -1, err
	}
	if fd < 0 {
		return -1, fmt.Errorf("%w: invalid descriptor %d", ErrResolution, fd)
	}
	return fd, nil
}
