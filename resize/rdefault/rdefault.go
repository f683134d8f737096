// Package rdefault picks a resizer per frame type.
package rdefault

import (
	"image"
	"runtime"

	"github.com/srlehn/drmswap/render"
	"github.com/srlehn/drmswap/resize/rez"
	"github.com/srlehn/drmswap/resize/xdraw"
)

// Resizer scales planar YCbCr frames with the SIMD kernels of rez on amd64
// and everything else with x/image/draw.
type Resizer struct {
	rez      rez.Resizer
	fallback render.Resizer
}

var _ render.Resizer = (*Resizer)(nil)

func New() *Resizer { return &Resizer{fallback: xdraw.ApproxBiLinear()} }

func (r *Resizer) Resize(img image.Image, size image.Point) (*image.RGBA, error) {
	if r.fallback == nil {
		r.fallback = xdraw.ApproxBiLinear()
	}
	if runtime.GOARCH == `amd64` {
		switch img.(type) {
		case *image.YCbCr, *image.RGBA, *image.Gray:
			if m, err := r.rez.Resize(img, size); err == nil {
				return m, nil
			}
		}
	}
	return r.fallback.Resize(img, size)
}
