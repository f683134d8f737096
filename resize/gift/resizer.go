// Package gift scales frames with github.com/disintegration/gift.
package gift

import (
	"image"

	"github.com/disintegration/gift"

	"github.com/srlehn/drmswap/render"
)

// Resizer uses "github.com/disintegration/gift" and renders into a
// destination reused across frames of the same size.
type Resizer struct {
	Resampling gift.Resampling // defaults to Lanczos

	dst  *image.RGBA
	g    *gift.GIFT
	size image.Point
}

var _ render.Resizer = (*Resizer)(nil)

func (r *Resizer) Resize(img image.Image, size image.Point) (*image.RGBA, error) {
	if err := render.CheckSize(size); err != nil {
		return nil, err
	}
	if r.g == nil || r.size != size {
		res := r.Resampling
		if res == nil {
			res = gift.LanczosResampling
		}
		r.g = gift.New(gift.Resize(size.X, size.Y, res))
		r.g.SetParallelization(true)
		r.size = size
	}
	r.dst = render.Canvas(r.dst, size)
	r.g.Draw(r.dst, img)
	return r.dst, nil
}
