// Package nfnt scales frames with github.com/nfnt/resize.
package nfnt

import (
	"image"

	"github.com/nfnt/resize"

	"github.com/srlehn/drmswap/render"
)

// Resizer uses "github.com/nfnt/resize". The zero value interpolates with
// nearest neighbor.
type Resizer struct {
	Interpolation resize.InterpolationFunction

	dst *image.RGBA
}

var _ render.Resizer = (*Resizer)(nil)

// New returns a Resizer using Lanczos resampling.
func New() *Resizer { return &Resizer{Interpolation: resize.Lanczos3} }

func (r *Resizer) Resize(img image.Image, size image.Point) (*image.RGBA, error) {
	if err := render.CheckSize(size); err != nil {
		return nil, err
	}
	m := resize.Resize(uint(size.X), uint(size.Y), img, r.Interpolation)
	r.dst = render.ToRGBA(r.dst, m)
	return r.dst, nil
}
