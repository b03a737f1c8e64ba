//go:build linux
// +build linux

package poller

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DefaultKernel returns the epoll bindings for the running system.
func DefaultKernel() Kernel {
	return linuxKernel{}
}

type linuxKernel struct{}

func (linuxKernel) Create() (int, error) {
	return unix.EpollCreate1(unix.EPOLL_CLOEXEC)
}

func (linuxKernel) Control(epfd int, op ControlOp, fd int, ev RawEvent) error {
	buf := make([]byte, rawEventSize)
	if err := MarshalRawEvent(buf, ev); err != nil {
		return err
	}
	_, _, e := unix.Syscall6(unix.SYS_EPOLL_CTL, uintptr(epfd), uintptr(op), uintptr(fd), uintptr(unsafe.Pointer(&buf[0])), 0, 0)
	if e != 0 {
		return e
	}
	return nil
}

// Wait uses epoll_pwait with a nil sigmask, which every Linux architecture
// provides, and decodes the records one by one.
func (linuxKernel) Wait(epfd int, events []RawEvent, msec int) (int, error) {
	if len(events) == 0 {
		return 0, fmt.Errorf("poller: empty event buffer")
	}
	buf := make([]byte, len(events)*rawEventSize)
	r, _, e := unix.Syscall6(unix.SYS_EPOLL_PWAIT, uintptr(epfd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(events)), uintptr(msec), 0, 0)
	if e != 0 {
		if e == unix.EINTR {
			return 0, fmt.Errorf("%w: %w", ErrInterrupted, e)
		}
		return 0, e
	}
	n := int(r)
	for i := 0; i < n; i++ {
		ev, err := UnmarshalRawEvent(buf[i*rawEventSize:])
		if err != nil {
			return i, err
		}
		events[i] = ev
	}
	return n, nil
}

func (linuxKernel) Close(fd int) error {
	return unix.Close(fd)
}

func (linuxKernel) NewWakeFd() (int, error) {
	return unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
}

func (linuxKernel) Wake(fd int) error {
	var b [8]byte
	binary.NativeEndian.PutUint64(b[:], 1)
	_, err := unix.Write(fd, b[:])
	if err == unix.EAGAIN {
		// counter saturated, already readable
		return nil
	}
	return err
}

func (linuxKernel) Drain(fd int) error {
	var b [8]byte
	_, err := unix.Read(fd, b[:])
	if err == unix.EAGAIN {
		return nil
	}
	return err
}
