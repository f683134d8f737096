// Package bild scales frames with github.com/anthonynsimon/bild/transform.
package bild

import (
	"image"

	"github.com/anthonynsimon/bild/transform"

	"github.com/srlehn/drmswap/render"
)

// Resizer uses "github.com/anthonynsimon/bild/transform".
// The zero value resamples with Lanczos.
type Resizer struct {
	Filter transform.ResampleFilter
}

var _ render.Resizer = (*Resizer)(nil)

func (r *Resizer) Resize(img image.Image, size image.Point) (*image.RGBA, error) {
	if err := render.CheckSize(size); err != nil {
		return nil, err
	}
	filter := r.Filter
	if filter.Support == 0 {
		filter = transform.Lanczos
	}
	// bild allocates the result itself
	return transform.Resize(img, size.X, size.Y, filter), nil
}
