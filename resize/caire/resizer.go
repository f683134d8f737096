// Package caire scales frames with seam carving, github.com/esimov/caire.
// It is far too slow for live video and meant for still test patterns.
package caire

import (
	"image"
	"image/draw"

	"github.com/esimov/caire"

	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/render"
)

// Resizer uses content aware image resizing.
type Resizer struct {
	src *image.NRGBA
	dst *image.RGBA
}

var _ render.Resizer = (*Resizer)(nil)

func (r *Resizer) Resize(img image.Image, size image.Point) (*image.RGBA, error) {
	if err := render.CheckSize(size); err != nil {
		return nil, err
	}
	p := &caire.Processor{
		BlurRadius:     1,
		SobelThreshold: 4,
		NewWidth:       size.X,
		NewHeight:      size.Y,
	}
	nimg, ok := img.(*image.NRGBA)
	if !ok {
		b := img.Bounds()
		if r.src == nil || r.src.Rect.Size() != b.Size() {
			r.src = image.NewNRGBA(image.Rectangle{Max: b.Size()})
		}
		draw.Draw(r.src, r.src.Bounds(), img, b.Min, draw.Src)
		nimg = r.src
	}
	m, err := p.Resize(nimg)
	if err != nil {
		return nil, errors.New(err)
	}
	r.dst = render.ToRGBA(r.dst, m)
	return r.dst, nil
}
