package kms

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/srlehn/drmswap/internal/errors"
)

// event types
const (
	EventVBlank       = 0x01
	EventFlipComplete = 0x02
	EventCrtcSequence = 0x03
)

const (
	eventHeaderLen = 8
	vblankEventLen = 32

	// EventBufferSize fits the events a read may return at once.
	EventBufferSize = 1024
)

// Event is a vblank or flip completion event read from the device.
type Event struct {
	Type     uint32
	UserData uint64
	Time     time.Duration // CLOCK_MONOTONIC
	Sequence uint32
	CrtcID   uint32
}

// ParseEvents decodes the events in b. Events of unknown types are skipped.
func ParseEvents(b []byte) ([]Event, error) {
	var evs []Event
	for len(b) > 0 {
		if len(b) < eventHeaderLen {
			return evs, errors.Errorf(`truncated event header: %d bytes`, len(b))
		}
		typ := binary.NativeEndian.Uint32(b[0:])
		length := int(binary.NativeEndian.Uint32(b[4:]))
		if length < eventHeaderLen || length > len(b) {
			return evs, errors.Errorf(`invalid event length %d (%d bytes left)`, length, len(b))
		}
		switch typ {
		case EventVBlank, EventFlipComplete:
			if length < vblankEventLen {
				return evs, errors.Errorf(`short vblank event: %d bytes`, length)
			}
			sec := binary.NativeEndian.Uint32(b[16:])
			usec := binary.NativeEndian.Uint32(b[20:])
			evs = append(evs, Event{
				Type:     typ,
				UserData: binary.NativeEndian.Uint64(b[8:]),
				Time:     time.Duration(sec)*time.Second + time.Duration(usec)*time.Microsecond,
				Sequence: binary.NativeEndian.Uint32(b[24:]),
				CrtcID:   binary.NativeEndian.Uint32(b[28:]),
			})
		}
		b = b[length:]
	}
	return evs, nil
}

// ReadEvents reads and decodes the pending events from r, usually a Device.
func ReadEvents(r io.Reader) ([]Event, error) {
	if r == nil {
		return nil, errors.NilParam()
	}
	buf := make([]byte, EventBufferSize)
	n, err := r.Read(buf)
	if err != nil {
		return nil, errors.New(err)
	}
	return ParseEvents(buf[:n])
}
