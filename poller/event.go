package poller

import "strings"

// EventType is a single readiness condition understood by epoll.
type EventType uint8

const (
	EventIn EventType = iota
	EventPriority
	EventOut
	EventReadNormal
	EventReadBand
	EventWriteNormal
	EventWriteBand
	EventMessage
	EventError
	EventHangup
	EventOneShot
	// EventEdgeTriggered switches a registration to edge-triggered delivery.
	// The poller passes it through untouched: a caller that does not drain a
	// descriptor completely after each event may never be woken for it again.
	EventEdgeTriggered

	numEventTypes
)

// Wire values of struct epoll_event.events. These are kernel ABI.
const (
	epollIn      uint32 = 0x001
	epollPri     uint32 = 0x002
	epollOut     uint32 = 0x004
	epollErr     uint32 = 0x008
	epollHup     uint32 = 0x010
	epollRdNorm  uint32 = 0x040
	epollRdBand  uint32 = 0x080
	epollWrNorm  uint32 = 0x100
	epollWrBand  uint32 = 0x200
	epollMsg     uint32 = 0x400
	epollOneShot uint32 = 1 << 30
	epollET      uint32 = 1 << 31
)

var wireBits = [numEventTypes]uint32{
	EventIn:            epollIn,
	EventPriority:      epollPri,
	EventOut:           epollOut,
	EventReadNormal:    epollRdNorm,
	EventReadBand:      epollRdBand,
	EventWriteNormal:   epollWrNorm,
	EventWriteBand:     epollWrBand,
	EventMessage:       epollMsg,
	EventError:         epollErr,
	EventHangup:        epollHup,
	EventOneShot:       epollOneShot,
	EventEdgeTriggered: epollET,
}

var eventNames = [numEventTypes]string{
	EventIn:            "IN",
	EventPriority:      "PRIORITY",
	EventOut:           "OUT",
	EventReadNormal:    "READ_NORMAL",
	EventReadBand:      "READ_BAND",
	EventWriteNormal:   "WRITE_NORMAL",
	EventWriteBand:     "WRITE_BAND",
	EventMessage:       "MESSAGE",
	EventError:         "ERROR",
	EventHangup:        "HANGUP",
	EventOneShot:       "ONE_SHOT",
	EventEdgeTriggered: "EDGE_TRIGGERED",
}

func (t EventType) String() string {
	if t >= numEventTypes {
		return "UNKNOWN"
	}
	return eventNames[t]
}

// EventMask is a set of EventType values.
type EventMask uint16

// NewEventMask builds a set out of the given types.
func NewEventMask(types ...EventType) EventMask {
	var m EventMask
	for _, t := range types {
		m = m.With(t)
	}
	return m
}

func (m EventMask) Has(t EventType) bool {
	return t < numEventTypes && m&(1<<t) != 0
}

func (m EventMask) With(t EventType) EventMask {
	if t >= numEventTypes {
		return m
	}
	return m | 1<<t
}

func (m EventMask) Without(t EventType) EventMask {
	if t >= numEventTypes {
		return m
	}
	return m &^ (1 << t)
}

func (m EventMask) Empty() bool {
	return m == 0
}

// Types lists the members of the set in EventType order.
func (m EventMask) Types() []EventType {
	var types []EventType
	for t := EventType(0); t < numEventTypes; t++ {
		if m.Has(t) {
			types = append(types, t)
		}
	}
	return types
}

func (m EventMask) String() string {
	types := m.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// Encode converts a set into the epoll wire bitmask.
func Encode(m EventMask) uint32 {
	var raw uint32
	for t := EventType(0); t < numEventTypes; t++ {
		if m.Has(t) {
			raw |= wireBits[t]
		}
	}
	return raw
}

// Decode converts an epoll wire bitmask into a set. Bits the package does not
// model are ignored.
func Decode(raw uint32) EventMask {
	var m EventMask
	for t := EventType(0); t < numEventTypes; t++ {
		if raw&wireBits[t] != 0 {
			m = m.With(t)
		}
	}
	return m
}
