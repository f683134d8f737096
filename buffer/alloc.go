package buffer

import (
	"sync"

	"github.com/srlehn/drmswap/internal/consts"
	"github.com/srlehn/drmswap/internal/errors"
)

// Allocator creates and frees buffers. Free must only be called after the
// buffer's framebuffer binding was released.
type Allocator interface {
	Allocate(width, height uint32) (*Buffer, error)
	Free(*Buffer) error
}

// StrideAlign is the row alignment used by Heap, matching common scanout
// requirements.
const StrideAlign = 64

// Heap allocates CPU memory buffers. Handles are assigned sequentially and
// never reused.
type Heap struct {
	mu     sync.Mutex
	nextID uint64
	live   map[uint64]struct{}
}

var _ Allocator = (*Heap)(nil)

func NewHeap() *Heap { return &Heap{} }

func (h *Heap) Allocate(width, height uint32) (*Buffer, error) {
	if h == nil {
		return nil, errors.NilReceiver()
	}
	stride := alignUp(width*consts.BytesPerPixel, StrideAlign)
	size := uint64(stride) * uint64(height)
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.mu.Unlock()
	b, err := New(id, Geometry{
		Width:  width,
		Height: height,
		Stride: stride,
		Size:   size,
		Handle: uint32(id),
	}, make([]byte, size))
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	if h.live == nil {
		h.live = make(map[uint64]struct{})
	}
	h.live[id] = struct{}{}
	h.mu.Unlock()
	return b, nil
}

func (h *Heap) Free(b *Buffer) error {
	if h == nil {
		return errors.NilReceiver()
	}
	if b == nil {
		return errors.NilParam()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.live[b.ID()]; !ok {
		return errors.Errorf(`%s: not allocated by this heap or already freed`, b)
	}
	delete(h.live, b.ID())
	b.Pix = nil
	return nil
}

// Live returns the number of allocated, not yet freed buffers.
func (h *Heap) Live() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

func alignUp(v, align uint32) uint32 { return (v + align - 1) &^ (align - 1) }
