//go:build linux

package display

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/internal/consts"
	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/kms"
)

// DumbAllocator allocates mapped dumb buffers on a DRM device.
type DumbAllocator struct {
	dev    *kms.Device
	mu     sync.Mutex
	nextID uint64
	live   map[uint64]uint32 // buffer id to dumb handle
}

var _ buffer.Allocator = (*DumbAllocator)(nil)

func NewDumbAllocator(dev *kms.Device) *DumbAllocator {
	return &DumbAllocator{dev: dev, live: make(map[uint64]uint32)}
}

func (a *DumbAllocator) Allocate(width, height uint32) (_ *buffer.Buffer, err error) {
	if a == nil || a.dev == nil {
		return nil, errors.NilReceiver()
	}
	dumb, err := a.dev.CreateDumb(width, height, consts.BitsPerPixel)
	if err != nil {
		return nil, errors.Kind(errors.ErrResource, err)
	}
	defer func() {
		if err != nil {
			_ = a.dev.DestroyDumb(dumb.Handle)
		}
	}()
	pix, err := a.dev.MapDumb(dumb.Handle, dumb.Size)
	if err != nil {
		return nil, errors.Kind(errors.ErrResource, err)
	}
	a.mu.Lock()
	a.nextID++
	id := a.nextID
	a.mu.Unlock()
	buf, err := buffer.New(id, buffer.Geometry{
		Width:  width,
		Height: height,
		Stride: dumb.Pitch,
		Size:   dumb.Size,
		Handle: dumb.Handle,
	}, pix)
	if err != nil {
		_ = unix.Munmap(pix)
		return nil, err
	}
	a.mu.Lock()
	a.live[id] = dumb.Handle
	a.mu.Unlock()
	return buf, nil
}

// Free unmaps and destroys the buffer. The framebuffer bound to it must have
// been removed already.
func (a *DumbAllocator) Free(buf *buffer.Buffer) error {
	if a == nil || a.dev == nil {
		return errors.NilReceiver()
	}
	if buf == nil {
		return errors.NilParam()
	}
	a.mu.Lock()
	handle, ok := a.live[buf.ID()]
	delete(a.live, buf.ID())
	a.mu.Unlock()
	if !ok {
		return errors.Kindf(errors.ErrResource, `%s: not allocated here or freed twice`, buf)
	}
	var errUnmap error
	if buf.Pix != nil {
		errUnmap = unix.Munmap(buf.Pix)
		buf.Pix = nil
	}
	errDestroy := a.dev.DestroyDumb(handle)
	if err := errors.Join(errUnmap, errDestroy); err != nil {
		return errors.Kind(errors.ErrResource, err)
	}
	return nil
}

// Live is the number of buffers not freed yet.
func (a *DumbAllocator) Live() int {
	if a == nil {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}
