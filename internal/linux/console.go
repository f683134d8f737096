//go:build linux

package linux

import (
	"golang.org/x/sys/unix"

	"github.com/srlehn/drmswap/internal/errors"
)

const (
	ioctlKDSETMODE = 0x4b3a
	ioctlKDGETMODE = 0x4b3b
)

func KDGetMode(fd uintptr) (mode KDMode, isLinuxConsole bool, _ error) {
	m, err := unix.IoctlGetInt(int(fd), ioctlKDGETMODE)
	mode = KDMode(m)
	if err == nil {
		return mode, true, nil
	}
	if errors.Is(err, unix.ENOTTY) || errors.Is(err, unix.EINVAL) {
		return -1, false, nil
	}
	return -1, false, errors.New(err)
}

func KDSetMode(fd uintptr, mode KDMode) error {
	if err := unix.IoctlSetInt(int(fd), ioctlKDSETMODE, int(mode)); err != nil {
		return errors.New(err)
	}
	return nil
}

// GraphicsMode switches the virtual console behind fd to KD_GRAPHICS, so the
// kernel stops drawing the text cursor over scanout. The returned func restores
// the previous mode. If fd is not a Linux console, nothing is changed and the
// returned func is a no-op.
func GraphicsMode(fd uintptr) (restore func() error, _ error) {
	noop := func() error { return nil }
	prev, isConsole, err := KDGetMode(fd)
	if err != nil {
		return noop, err
	}
	if !isConsole || prev == KDGraphics {
		return noop, nil
	}
	if err := KDSetMode(fd, KDGraphics); err != nil {
		return noop, err
	}
	return func() error { return KDSetMode(fd, prev) }, nil
}
