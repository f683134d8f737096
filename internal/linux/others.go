//go:build !linux

package linux

import (
	"github.com/srlehn/drmswap/internal/consts"
	"github.com/srlehn/drmswap/internal/errors"
)

func KDGetMode(fd uintptr) (mode KDMode, isLinuxConsole bool, _ error) {
	return -1, false, errors.New(consts.ErrPlatformNotSupported)
}

func KDSetMode(fd uintptr, mode KDMode) error {
	return errors.New(consts.ErrPlatformNotSupported)
}

func GraphicsMode(fd uintptr) (restore func() error, _ error) {
	return func() error { return nil }, nil
}
