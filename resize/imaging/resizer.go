// Package imaging scales frames with github.com/disintegration/imaging.
package imaging

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/srlehn/drmswap/render"
)

// Resizer uses "github.com/disintegration/imaging". The zero value uses the
// Lanczos filter. With Fill set, frames are scaled to cover the target and
// cropped at the center instead of being stretched.
type Resizer struct {
	Filter imaging.ResampleFilter
	Fill   bool

	dst *image.RGBA
}

var _ render.Resizer = (*Resizer)(nil)

func (r *Resizer) Resize(img image.Image, size image.Point) (*image.RGBA, error) {
	if err := render.CheckSize(size); err != nil {
		return nil, err
	}
	filter := r.Filter
	if filter.Kernel == nil && filter.Support == 0 {
		filter = imaging.Lanczos
	}
	var m *image.NRGBA
	if r.Fill {
		m = imaging.Fill(img, size.X, size.Y, imaging.Center, filter)
	} else {
		m = imaging.Resize(img, size.X, size.Y, filter)
	}
	r.dst = render.ToRGBA(r.dst, m)
	return r.dst, nil
}
