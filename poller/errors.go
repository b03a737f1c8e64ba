package poller

import (
	"errors"
	"fmt"
)

var (
	ErrCreation              = errors.New("poller: unable to create epoll instance")
	ErrResolution            = errors.New("poller: unable to get native file descriptor")
	ErrDuplicateRegistration = errors.New("poller: handle already registered")
	ErrNotRegistered         = errors.New("poller: handle not registered")
	ErrKernelControl         = errors.New("poller: epoll_ctl failed")
	ErrInterrupted           = errors.New("poller: wait interrupted")
	ErrPollerClosed          = errors.New("poller: poller is closed")
	ErrUnsupported           = errors.New("poller: epoll is not supported on this platform")
)

// ControlOp is an epoll_ctl opcode.
type ControlOp int

const (
	OpAdd ControlOp = 1
	OpDel ControlOp = 2
	OpMod ControlOp = 3
)

func (op ControlOp) String() string {
	switch op {
	case OpAdd:
		return "EPOLL_CTL_ADD"
	case OpDel:
		return "EPOLL_CTL_DEL"
	case OpMod:
		return "EPOLL_CTL_MOD"
	}
	return fmt.Sprintf("EPOLL_CTL(%d)", int(op))
}

// ControlError reports a failed epoll_ctl call. It matches ErrKernelControl
// with errors.Is and unwraps to the underlying errno.
type ControlError struct {
	Op  ControlOp
	Fd  int
	Err error
}

func (e *ControlError) Error() string {
	return fmt.Sprintf("poller: %s fd %d: %v", e.Op, e.Fd, e.Err)
}

func (e *ControlError) Unwrap() error {
	return e.Err
}

func (e *ControlError) Is(target error) bool {
	return target == ErrKernelControl
}
