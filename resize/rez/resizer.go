// Package rez scales frames with github.com/bamiaux/rez, which has SIMD
// kernels for planar YCbCr input.
package rez

import (
	"image"

	"github.com/bamiaux/rez"

	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/render"
)

// Resizer uses "github.com/bamiaux/rez". YCbCr frames are scaled in their
// native format before the color conversion to RGBA.
type Resizer struct {
	Filter rez.Filter // defaults to bilinear

	scaled *image.YCbCr
	dst    *image.RGBA
}

var _ render.Resizer = (*Resizer)(nil)

func (r *Resizer) Resize(img image.Image, size image.Point) (*image.RGBA, error) {
	if err := render.CheckSize(size); err != nil {
		return nil, err
	}
	filter := r.Filter
	if filter == nil {
		filter = rez.NewBilinearFilter()
	}
	if src, ok := img.(*image.YCbCr); ok {
		rect := image.Rectangle{Max: size}
		if r.scaled == nil || r.scaled.Rect != rect || r.scaled.SubsampleRatio != src.SubsampleRatio {
			r.scaled = image.NewYCbCr(rect, src.SubsampleRatio)
		}
		if err := rez.Convert(r.scaled, src, filter); err != nil {
			return nil, errors.New(err)
		}
		r.dst = render.ToRGBA(r.dst, r.scaled)
		return r.dst, nil
	}
	r.dst = render.Canvas(r.dst, size)
	if err := rez.Convert(r.dst, img, filter); err != nil {
		return nil, errors.New(err)
	}
	return r.dst, nil
}
