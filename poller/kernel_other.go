//go:build !linux
// +build !linux

package poller

func DefaultKernel() Kernel {
	return unsupportedKernel{}
}

type unsupportedKernel struct{}

func (unsupportedKernel) Create() (int, error) {
	return -1, ErrUnsupported
}

func (unsupportedKernel) Control(epfd int, op ControlOp, fd int, ev RawEvent) error {
	return ErrUnsupported
}

func (unsupportedKernel) Wait(epfd int, events []RawEvent, msec int) (int, error) {
	return 0, ErrUnsupported
}

func (unsupportedKernel) Close(fd int) error {
	return ErrUnsupported
}

func (unsupportedKernel) NewWakeFd() (int, error) {
	return -1, ErrUnsupported
}

func (unsupportedKernel) Wake(fd int) error {
	return ErrUnsupported
}

func (unsupportedKernel) Drain(fd int) error {
	return ErrUnsupported
}
