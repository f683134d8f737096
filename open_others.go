//go:build !linux

package drmswap

import (
	"github.com/srlehn/drmswap/display"
	"github.com/srlehn/drmswap/internal/consts"
	"github.com/srlehn/drmswap/internal/errors"
)

func openDevice(string, display.Options) (display.Target, error) {
	return nil, errors.Kind(errors.ErrConfig, consts.ErrPlatformNotSupported)
}
