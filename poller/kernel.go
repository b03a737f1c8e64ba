package poller

// Kernel is the set of system calls a Poller needs. DefaultKernel returns the
// real one; tests substitute an in-memory fake.
type Kernel interface {
	// Create returns a new epoll instance.
	Create() (int, error)
	// Control issues epoll_ctl. ev is ignored for OpDel.
	Control(epfd int, op ControlOp, fd int, ev RawEvent) error
	// Wait blocks in epoll_wait, filling events. msec < 0 blocks forever.
	// An interrupted wait returns an error matching ErrInterrupted.
	Wait(epfd int, events []RawEvent, msec int) (int, error)
	// Close releases a descriptor created by Create or NewWakeFd.
	Close(fd int) error

	// NewWakeFd returns a descriptor that becomes readable after Wake and
	// stays readable until Drain.
	NewWakeFd() (int, error)
	Wake(fd int) error
	Drain(fd int) error
}
