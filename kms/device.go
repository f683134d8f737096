//go:build linux

// Package kms adapts the Linux DRM/KMS modesetting interface of
// github.com/NeowayLabs/drm to the swap chain: resource enumeration, legacy
// CRTC configuration, dumb buffers and framebuffer objects. Asynchronous
// page flips and their completion events are bound here directly.
package kms

import (
	"os"

	"github.com/NeowayLabs/drm"
	"golang.org/x/sys/unix"

	"github.com/srlehn/drmswap/internal/errors"
)

// Device is an open DRM device node.
type Device struct {
	f *os.File
}

// Open opens the card at path, e.g. /dev/dri/card0, and checks that it
// supports dumb buffers.
func Open(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.New(err)
	}
	if !drm.HasDumbBuffer(f) {
		_ = f.Close()
		return nil, errors.Errorf(`%s: dumb buffers not supported`, path)
	}
	return &Device{f: f}, nil
}

func (d *Device) Fd() int {
	if d == nil || d.f == nil {
		return -1
	}
	return int(d.f.Fd())
}

func (d *Device) Name() string {
	if d == nil || d.f == nil {
		return ``
	}
	return d.f.Name()
}

func (d *Device) Close() error {
	if d == nil || d.f == nil {
		return nil
	}
	defer func() { d.f = nil }()
	if err := d.f.Close(); err != nil {
		return errors.New(err)
	}
	return nil
}

// Read reads raw event data, see ReadEvents.
func (d *Device) Read(p []byte) (int, error) {
	if d == nil || d.f == nil {
		return 0, errors.NilReceiver()
	}
	n, err := unix.Read(d.Fd(), p)
	if err != nil {
		return 0, errors.New(err)
	}
	return n, nil
}

func (d *Device) file() (*os.File, error) {
	if d == nil || d.f == nil {
		return nil, errors.NilReceiver()
	}
	return d.f, nil
}

func (d *Device) Version() (*Version, error) {
	f, err := d.file()
	if err != nil {
		return nil, err
	}
	v, err := drm.GetVersion(f)
	if err != nil {
		return nil, errors.WrapPrefix(err, `DRM_IOCTL_VERSION`, 0)
	}
	return &Version{
		Major: v.Major,
		Minor: v.Minor,
		Patch: v.Patch,
		Name:  v.Name,
		Date:  v.Date,
		Desc:  v.Desc,
	}, nil
}
