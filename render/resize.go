package render

import (
	"image"
	"image/draw"

	"github.com/srlehn/drmswap/internal/errors"
)

// Resizer scales video frames to the display size. The returned image is
// owned by the Resizer and overwritten by the next call.
type Resizer interface {
	Resize(img image.Image, size image.Point) (*image.RGBA, error)
}

// CheckSize rejects empty target sizes.
func CheckSize(size image.Point) error {
	if size.X <= 0 || size.Y <= 0 {
		return errors.Kindf(errors.ErrRender, `invalid target size %dx%d`, size.X, size.Y)
	}
	return nil
}

// Canvas returns an RGBA image of size, reusing dst if it has that size.
func Canvas(dst *image.RGBA, size image.Point) *image.RGBA {
	if dst != nil && dst.Rect.Min == (image.Point{}) && dst.Rect.Max == size {
		return dst
	}
	return image.NewRGBA(image.Rectangle{Max: size})
}

// ToRGBA returns img as RGBA, copying it into dst if it is of another type.
func ToRGBA(dst *image.RGBA, img image.Image) *image.RGBA {
	if m, ok := img.(*image.RGBA); ok {
		return m
	}
	b := img.Bounds()
	dst = Canvas(dst, b.Size())
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
