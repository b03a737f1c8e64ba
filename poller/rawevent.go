package poller

import (
	"encoding/binary"
	"fmt"
)

// RawEvent mirrors struct epoll_event: the wire mask plus the 8 bytes of
// epoll_data_t the kernel hands back untouched.
type RawEvent struct {
	Events uint32
	Data   uint64
}

// RawEventSize is the size of struct epoll_event on this platform.
func RawEventSize() int {
	return rawEventSize
}

// MarshalRawEvent writes ev into b using the kernel's struct epoll_event
// layout. b must hold at least RawEventSize bytes.
func MarshalRawEvent(b []byte, ev RawEvent) error {
	if len(b) < rawEventSize {
		return fmt.Errorf("poller: short buffer for epoll_event: %d < %d", len(b), rawEventSize)
	}
	binary.NativeEndian.PutUint32(b[0:4], ev.Events)
	for i := 4; i < rawDataOffset; i++ {
		b[i] = 0
	}
	binary.NativeEndian.PutUint64(b[rawDataOffset:rawDataOffset+8], ev.Data)
	return nil
}

// UnmarshalRawEvent reads one struct epoll_event from b.
func UnmarshalRawEvent(b []byte) (RawEvent, error) {
	if len(b) < rawEventSize {
		return RawEvent{}, fmt.Errorf("poller: short buffer for epoll_event: %d < %d", len(b), rawEventSize)
	}
	return RawEvent{
		Events: binary.NativeEndian.Uint32(b[0:4]),
		Data:   binary.NativeEndian.Uint64(b[rawDataOffset : rawDataOffset+8]),
	}, nil
}

func fdData(fd int) uint64 {
	return uint64(uint32(int32(fd)))
}

func dataFd(data uint64) int {
	return int(int32(uint32(data)))
}
