// Package xdraw provides resizers using golang.org/x/image/draw.
// ApproxBiLinear is recommended for scaling video frames in real time.
package xdraw

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/srlehn/drmswap/render"
)

type resizer struct {
	scaler draw.Scaler
	dst    *image.RGBA
}

var _ render.Resizer = (*resizer)(nil)

// NearestNeighbor is the fastest scaler.
func NearestNeighbor() render.Resizer { return &resizer{scaler: draw.NearestNeighbor} }

// ApproxBiLinear balances speed and quality.
func ApproxBiLinear() render.Resizer { return &resizer{scaler: draw.ApproxBiLinear} }

// BiLinear has higher quality, and is slower.
func BiLinear() render.Resizer { return &resizer{scaler: draw.BiLinear} }

// CatmullRom has the highest quality, and is the slowest.
func CatmullRom() render.Resizer { return &resizer{scaler: draw.CatmullRom} }

func (r *resizer) Resize(img image.Image, size image.Point) (*image.RGBA, error) {
	if err := render.CheckSize(size); err != nil {
		return nil, err
	}
	r.dst = render.Canvas(r.dst, size)
	r.scaler.Scale(r.dst, r.dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return r.dst, nil
}
