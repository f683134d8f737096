package consts

import (
	"errors"
)

var (
	ErrNotImplemented       = errors.New(`not implemented`)
	ErrNilReceiver          = errors.New(`nil receiver`)
	ErrNilParam             = errors.New(`nil parameter`)
	ErrNotMapped            = errors.New(`buffer is not CPU mapped`)
	ErrPlatformNotSupported = errors.New(`platform not supported`)
)

const (
	LibraryName = `drmswap`

	DefaultDevice = `/dev/dri/card0`

	// XRGB8888
	ColorDepth    = 24
	BitsPerPixel  = 32
	BytesPerPixel = BitsPerPixel / 8

	RendererSolid     = `solid`
	RendererRaster    = `raster`
	RendererComposite = `composite`
)
