package testutil

import (
	"image/color"

	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/internal/errors"
)

// Renderer fills buffers with a color derived from the frame number and
// records which buffers it painted.
type Renderer struct {
	// OnPaint runs after every successful paint with the 1-based frame number.
	OnPaint func(frame int, buf *buffer.Buffer)
	// FailAt makes the nth paint fail.
	FailAt int

	Painted []uint64
}

// FrameColor is the color of frame n.
func FrameColor(n int) color.RGBA {
	return color.RGBA{R: uint8(n), G: uint8(n >> 8), B: 0x80, A: 0xff}
}

func (r *Renderer) Paint(buf *buffer.Buffer) error {
	n := len(r.Painted) + 1
	if n == r.FailAt {
		return errors.New(`paint failed`)
	}
	if err := buf.Fill(FrameColor(n)); err != nil {
		return err
	}
	r.Painted = append(r.Painted, buf.ID())
	if r.OnPaint != nil {
		r.OnPaint(n, buf)
	}
	return nil
}
