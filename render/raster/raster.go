// Package raster draws a quad with a different color at every corner,
// interpolated across the two triangles of a strip, with github.com/fogleman/gg.
package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/internal/consts"
	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/render"
)

func init() {
	render.Register(consts.RendererRaster, func(opts render.Options) (render.Renderer, error) {
		return New(), nil
	})
}

// Corners holds the colors of the top left, top right, bottom left and
// bottom right corner.
type Corners [4]colorful.Color

// DefaultCorners are red, green, blue and yellow.
var DefaultCorners = Corners{
	{R: 1, G: 0, B: 0},
	{R: 0, G: 1, B: 0},
	{R: 0, G: 0, B: 1},
	{R: 1, G: 1, B: 0},
}

// Rotate shifts the hue of every corner by deg degrees.
func (c Corners) Rotate(deg float64) Corners {
	var r Corners
	for i, col := range c {
		h, s, v := col.Hsv()
		r[i] = colorful.Hsv(math.Mod(h+deg+360, 360), s, v).Clamped()
	}
	return r
}

// strip is a gg.Pattern for the triangles (tl, tr, bl) and (tr, bl, br).
type strip struct {
	corners Corners
	w, h    float64
}

var _ gg.Pattern = (*strip)(nil)

func (s *strip) ColorAt(x, y int) color.Color {
	u := (float64(x) + 0.5) / s.w
	v := (float64(y) + 0.5) / s.h
	tl, tr, bl, br := s.corners[0], s.corners[1], s.corners[2], s.corners[3]
	var r, g, b float64
	if u+v <= 1 {
		wl := 1 - u - v
		r = tl.R*wl + tr.R*u + bl.R*v
		g = tl.G*wl + tr.G*u + bl.G*v
		b = tl.B*wl + tr.B*u + bl.B*v
	} else {
		wr := u + v - 1
		r = br.R*wr + tr.R*(1-v) + bl.R*(1-u)
		g = br.G*wr + tr.G*(1-v) + bl.G*(1-u)
		b = br.B*wr + tr.B*(1-v) + bl.B*(1-u)
	}
	return colorful.Color{R: r, G: g, B: b}.Clamped()
}

// Renderer draws the quad, rotating the corner hues by HueStep degrees per
// frame.
type Renderer struct {
	Corners Corners
	HueStep float64

	frame int
	dc    *gg.Context
}

var _ render.Renderer = (*Renderer)(nil)

func New() *Renderer { return &Renderer{Corners: DefaultCorners, HueStep: 1} }

func (r *Renderer) Paint(buf *buffer.Buffer) error {
	if buf == nil {
		return errors.NilParam()
	}
	w, h := int(buf.Width), int(buf.Height)
	if r.dc == nil || r.dc.Width() != w || r.dc.Height() != h {
		r.dc = gg.NewContext(w, h)
	}
	dc := r.dc
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetFillStyle(&strip{
		corners: r.Corners.Rotate(float64(r.frame) * r.HueStep),
		w:       float64(w),
		h:       float64(h),
	})
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()
	r.frame++

	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return errors.New(`unexpected gg image type`)
	}
	return buf.Blit(img)
}
