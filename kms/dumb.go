//go:build linux

package kms

import (
	"math"

	"github.com/NeowayLabs/drm/mode"
	"golang.org/x/sys/unix"

	"github.com/srlehn/drmswap/internal/errors"
)

// Dumb is a CPU-mappable scanout buffer.
type Dumb struct {
	Handle uint32
	Width  uint32
	Height uint32
	BPP    uint32
	Pitch  uint32
	Size   uint64
}

func dims16(width, height uint32) (uint16, uint16, error) {
	if width > math.MaxUint16 || height > math.MaxUint16 {
		return 0, 0, errors.Errorf(`size %dx%d exceeds %d`, width, height, math.MaxUint16)
	}
	return uint16(width), uint16(height), nil
}

func (d *Device) CreateDumb(width, height, bpp uint32) (*Dumb, error) {
	f, err := d.file()
	if err != nil {
		return nil, err
	}
	w, h, err := dims16(width, height)
	if err != nil {
		return nil, err
	}
	fb, err := mode.CreateFB(f, w, h, bpp)
	if err != nil {
		return nil, errors.WrapPrefix(err, `DRM_IOCTL_MODE_CREATE_DUMB`, 0)
	}
	return &Dumb{
		Handle: fb.Handle,
		Width:  width,
		Height: height,
		BPP:    bpp,
		Pitch:  fb.Pitch,
		Size:   fb.Size,
	}, nil
}

// MapDumb maps the dumb buffer into memory. Unmap with unix.Munmap.
func (d *Device) MapDumb(handle uint32, size uint64) ([]byte, error) {
	f, err := d.file()
	if err != nil {
		return nil, err
	}
	offset, err := mode.MapDumb(f, handle)
	if err != nil {
		return nil, errors.WrapPrefix(err, `DRM_IOCTL_MODE_MAP_DUMB`, 0)
	}
	pix, err := unix.Mmap(d.Fd(), int64(offset), int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.WrapPrefix(err, `mmap dumb buffer`, 0)
	}
	return pix, nil
}

func (d *Device) DestroyDumb(handle uint32) error {
	f, err := d.file()
	if err != nil {
		return err
	}
	if err := mode.DestroyDumb(f, handle); err != nil {
		return errors.WrapPrefix(err, `DRM_IOCTL_MODE_DESTROY_DUMB`, 0)
	}
	return nil
}

// AddFB registers a framebuffer object for the buffer object handle.
func (d *Device) AddFB(width, height uint32, depth, bpp uint8, pitch, handle uint32) (uint32, error) {
	f, err := d.file()
	if err != nil {
		return 0, err
	}
	w, h, err := dims16(width, height)
	if err != nil {
		return 0, err
	}
	fb, err := mode.AddFB(f, w, h, depth, bpp, pitch, handle)
	if err != nil {
		return 0, errors.WrapPrefix(err, `DRM_IOCTL_MODE_ADDFB`, 0)
	}
	return fb, nil
}

func (d *Device) RmFB(fb uint32) error {
	f, err := d.file()
	if err != nil {
		return err
	}
	if err := mode.RmFB(f, fb); err != nil {
		return errors.WrapPrefix(err, `DRM_IOCTL_MODE_RMFB`, 0)
	}
	return nil
}
