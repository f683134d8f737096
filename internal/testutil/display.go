// Package testutil provides fakes for tests of the flip loop and sessions.
package testutil

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/display"
	"github.com/srlehn/drmswap/flip"
	"github.com/srlehn/drmswap/internal/errors"
)

// Display is a display.Target recording every operation. Presents complete
// immediately unless Manual is set.
type Display struct {
	// Manual holds presents back until Complete is called.
	Manual bool
	// FailPresent, FailAdd and FailAlloc make the nth call (1-based) fail.
	FailPresent   int
	FailAdd       int
	FailAlloc     int
	FailConfigure bool

	mu         sync.Mutex
	r, w       int
	mode       display.Mode
	heap       *buffer.Heap
	ops        []string
	nextFB     uint32
	fbs        map[uint32]uint32 // fb to memory handle
	queue      []flip.Completion
	held       []uint64
	sequence   uint32
	configured bool
	closed     bool
	presents   int
	adds       int
	allocs     int
	violations []error
}

var _ display.Target = (*Display)(nil)

func NewDisplay(width, height uint32) (*Display, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, errors.New(err)
	}
	return &Display{
		r:    fds[0],
		w:    fds[1],
		mode: display.Mode{Width: width, Height: height, Refresh: 60, Name: `fake`},
		heap: buffer.NewHeap(),
		fbs:  make(map[uint32]uint32),
	}, nil
}

func (d *Display) record(format string, a ...any) {
	d.ops = append(d.ops, fmt.Sprintf(format, a...))
}

func (d *Display) violate(format string, a ...any) error {
	err := errors.Errorf(format, a...)
	d.violations = append(d.violations, err)
	return err
}

// Ops returns the recorded operations, e.g. "alloc 1", "add 1", "present 1 1".
func (d *Display) Ops() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ops...)
}

// Violations are resource ordering errors observed, like freeing a buffer
// that is still bound to a framebuffer.
func (d *Display) Violations() []error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]error(nil), d.violations...)
}

// Framebuffers is the number of registered framebuffers.
func (d *Display) Framebuffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.fbs)
}

// LiveBuffers is the number of allocated buffers.
func (d *Display) LiveBuffers() int { return d.heap.Live() }

func (d *Display) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Display) Mode() display.Mode          { return d.mode }
func (d *Display) Allocator() buffer.Allocator { return d }
func (d *Display) Fd() int                     { return d.r }

func (d *Display) Allocate(width, height uint32) (*buffer.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.allocs++
	if d.allocs == d.FailAlloc {
		return nil, errors.New(`out of memory`)
	}
	buf, err := d.heap.Allocate(width, height)
	if err != nil {
		return nil, err
	}
	d.record(`alloc %d`, buf.ID())
	return buf, nil
}

func (d *Display) Free(buf *buffer.Buffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for fb, handle := range d.fbs {
		if handle == buf.Handle {
			return d.violate(`%s freed while bound to framebuffer %d`, buf, fb)
		}
	}
	d.record(`free %d`, buf.ID())
	return d.heap.Free(buf)
}

func (d *Display) AddFramebuffer(geom buffer.Geometry) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.adds++
	if d.adds == d.FailAdd {
		return 0, errors.New(unix.ENOMEM)
	}
	d.nextFB++
	d.fbs[d.nextFB] = geom.Handle
	d.record(`add %d`, d.nextFB)
	return d.nextFB, nil
}

func (d *Display) RemoveFramebuffer(fb uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.fbs[fb]; !ok {
		return d.violate(`unknown framebuffer %d`, fb)
	}
	if len(d.held) > 0 {
		return d.violate(`framebuffer %d removed with a flip in flight`, fb)
	}
	delete(d.fbs, fb)
	d.record(`rm %d`, fb)
	return nil
}

func (d *Display) Configure(fb uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailConfigure {
		return errors.Kindf(errors.ErrConfig, `mode rejected`)
	}
	if _, ok := d.fbs[fb]; !ok {
		return d.violate(`configure with unknown framebuffer %d`, fb)
	}
	d.configured = true
	d.record(`configure %d`, fb)
	return nil
}

func (d *Display) Restore() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.configured {
		return nil
	}
	d.configured = false
	d.record(`restore`)
	return nil
}

func (d *Display) Present(fb uint32, token uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presents++
	if d.presents == d.FailPresent {
		return errors.New(unix.EINVAL)
	}
	if _, ok := d.fbs[fb]; !ok {
		return d.violate(`present of unknown framebuffer %d`, fb)
	}
	if len(d.held) > 0 {
		return d.violate(`present of framebuffer %d while flip %d is in flight`, fb, d.held[0])
	}
	d.record(`present %d %d`, fb, token)
	if d.Manual {
		d.held = append(d.held, token)
		return nil
	}
	d.complete(token)
	return nil
}

func (d *Display) complete(token uint64) {
	d.sequence++
	d.queue = append(d.queue, flip.Completion{Token: token, Sequence: d.sequence})
	_, _ = unix.Write(d.w, []byte{0})
}

// Complete finishes the held presents in Manual mode.
func (d *Display) Complete() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.held)
	for _, token := range d.held {
		d.complete(token)
	}
	d.held = nil
	return n
}

// Inject queues a completion that was never requested.
func (d *Display) Inject(c flip.Completion) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, c)
	_, _ = unix.Write(d.w, []byte{0})
}

func (d *Display) ReadCompletions() ([]flip.Completion, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b [64]byte
	for {
		if n, err := unix.Read(d.r, b[:]); n <= 0 || err != nil {
			break
		}
	}
	comps := d.queue
	d.queue = nil
	return comps, nil
}

func (d *Display) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.record(`close`)
	return errors.Join(unix.Close(d.r), unix.Close(d.w))
}
