//go:build linux

package kms

import (
	"unsafe"

	"github.com/NeowayLabs/drm"
	"github.com/NeowayLabs/drm/ioctl"

	"github.com/srlehn/drmswap/internal/errors"
)

// struct drm_mode_crtc_page_flip
type sysPageFlip struct {
	crtcID   uint32
	fbID     uint32
	flags    uint32
	reserved uint32
	userData uint64
}

// DRM_IOWR(0xB0, struct drm_mode_crtc_page_flip)
var ioctlModePageFlip = ioctl.NewCode(ioctl.Read|ioctl.Write,
	uint16(unsafe.Sizeof(sysPageFlip{})), drm.IOCTLBase, 0xB0)

// PageFlip schedules fb to be scanned out on crtc at the next vertical blank.
// With PageFlipEvent set in flags, a flip complete event carrying userData
// is queued on the device once the flip happened.
func (d *Device) PageFlip(crtcID, fbID, flags uint32, userData uint64) error {
	f, err := d.file()
	if err != nil {
		return err
	}
	p := &sysPageFlip{crtcID: crtcID, fbID: fbID, flags: flags, userData: userData}
	err = ioctl.Do(uintptr(f.Fd()), uintptr(ioctlModePageFlip), uintptr(unsafe.Pointer(p)))
	if err != nil {
		return errors.WrapPrefix(err, `DRM_IOCTL_MODE_PAGE_FLIP`, 0)
	}
	return nil
}
