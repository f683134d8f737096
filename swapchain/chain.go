// Package swapchain tracks which buffer is on screen and which one may be
// painted.
package swapchain

import (
	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/internal/errors"
)

// State of the chain with respect to the display controller.
type State int

const (
	Idle State = iota
	FlipPending
)

func (s State) String() string {
	switch s {
	case Idle:
		return `idle`
	case FlipPending:
		return `flip-pending`
	default:
		return `unknown`
	}
}

// Chain holds one or two buffers. Front is the buffer shown on screen or the
// one whose present request is in flight. With two buffers the other one is
// the back buffer, the only one that may be painted. With a single buffer
// front and back coincide and tearing is accepted.
//
// Chain is not safe for concurrent use.
type Chain struct {
	buffers  []*buffer.Buffer
	front    int
	state    State
	advances uint64
}

// New creates a chain over 1 or 2 buffers with the first one as front.
func New(bufs ...*buffer.Buffer) (*Chain, error) {
	if len(bufs) < 1 || len(bufs) > 2 {
		return nil, errors.Kindf(errors.ErrConfig, `buffer count must be 1 or 2, got %d`, len(bufs))
	}
	for i, b := range bufs {
		if b == nil {
			return nil, errors.Errorf(`nil buffer at index %d`, i)
		}
		if i > 0 && b.ID() == bufs[0].ID() {
			return nil, errors.Errorf(`buffer %s used twice`, b)
		}
	}
	return &Chain{buffers: append([]*buffer.Buffer(nil), bufs...)}, nil
}

func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.buffers)
}

// Buffers returns the buffers in chain order.
func (c *Chain) Buffers() []*buffer.Buffer {
	if c == nil {
		return nil
	}
	return append([]*buffer.Buffer(nil), c.buffers...)
}

func (c *Chain) FrontIndex() int {
	if c == nil {
		return -1
	}
	return c.front
}

func (c *Chain) BackIndex() int {
	if c == nil {
		return -1
	}
	if len(c.buffers) == 1 {
		return 0
	}
	return 1 - c.front
}

func (c *Chain) Front() *buffer.Buffer {
	if c == nil || len(c.buffers) == 0 {
		return nil
	}
	return c.buffers[c.front]
}

func (c *Chain) Back() *buffer.Buffer {
	if c == nil || len(c.buffers) == 0 {
		return nil
	}
	return c.buffers[c.BackIndex()]
}

// Advance makes the back buffer the new front. It must run exactly once per
// completed present.
func (c *Chain) Advance() {
	if c == nil {
		return
	}
	c.front = c.BackIndex()
	c.advances++
}

// Advances returns how often Advance ran.
func (c *Chain) Advances() uint64 {
	if c == nil {
		return 0
	}
	return c.advances
}

func (c *Chain) State() State {
	if c == nil {
		return Idle
	}
	return c.state
}

func (c *Chain) Pending() bool { return c.State() == FlipPending }

// BeginFlip records a submitted present request.
func (c *Chain) BeginFlip() error {
	if c == nil {
		return errors.NilReceiver()
	}
	if c.state == FlipPending {
		return errors.New(errors.ErrFlipPending)
	}
	c.state = FlipPending
	return nil
}

// EndFlip records the completion of the outstanding present request.
func (c *Chain) EndFlip() error {
	if c == nil {
		return errors.NilReceiver()
	}
	if c.state != FlipPending {
		return errors.New(errors.ErrNotPending)
	}
	c.state = Idle
	return nil
}
