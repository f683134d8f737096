// Package solid fills the whole buffer with one color that drifts a little
// every frame, which makes tearing and dropped frames easy to spot.
package solid

import (
	"image/color"

	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/internal/consts"
	"github.com/srlehn/drmswap/render"
)

func init() {
	render.Register(consts.RendererSolid, func(render.Options) (render.Renderer, error) {
		return New(), nil
	})
}

// Renderer bounces every channel between 0 and 255 with its own step.
type Renderer struct {
	value [3]int
	step  [3]int
}

var _ render.Renderer = (*Renderer)(nil)

func New() *Renderer {
	return &Renderer{value: [3]int{0, 85, 170}, step: [3]int{3, 5, 7}}
}

// Color is the color of the next frame.
func (r *Renderer) Color() color.RGBA {
	return color.RGBA{R: uint8(r.value[0]), G: uint8(r.value[1]), B: uint8(r.value[2]), A: 0xff}
}

func (r *Renderer) Paint(buf *buffer.Buffer) error {
	if err := buf.Fill(r.Color()); err != nil {
		return err
	}
	for i := range r.value {
		v := r.value[i] + r.step[i]
		if v < 0 || v > 0xff {
			r.step[i] = -r.step[i]
			v = r.value[i] + r.step[i]
		}
		r.value[i] = v
	}
	return nil
}
