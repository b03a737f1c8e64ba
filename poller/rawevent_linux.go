//go:build linux
// +build linux

package poller

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// x/sys models epoll_data_t through its fd member, which always sits at the
// start of the union. amd64 and 386 pack the struct to 12 bytes.
var (
	rawDataOffset = int(unsafe.Offsetof(unix.EpollEvent{}.Fd))
	rawEventSize  = int(unsafe.Sizeof(unix.EpollEvent{}))
)
