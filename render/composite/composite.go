// Package composite shows decoded video frames, converting them from YUV to
// the XRGB layout of the scanout buffers and scaling them to the display.
package composite

import (
	"image"

	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/internal/consts"
	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/render"
	"github.com/srlehn/drmswap/resize/rdefault"
)

func init() {
	render.Register(consts.RendererComposite, func(opts render.Options) (render.Renderer, error) {
		if opts.Frames == nil {
			return nil, errors.Kindf(errors.ErrConfig, `%s renderer needs a frame source`, consts.RendererComposite)
		}
		frames, err := NewRawFrames(opts.Frames, opts.FrameSize)
		if err != nil {
			return nil, err
		}
		return New(frames, opts.Resizer), nil
	})
}

// Renderer shows one frame per paint.
type Renderer struct {
	frames  *RawFrames
	resizer render.Resizer
	rgba    *image.RGBA
}

var _ render.Renderer = (*Renderer)(nil)

// New returns a Renderer. A nil resizer selects the default one.
func New(frames *RawFrames, resizer render.Resizer) *Renderer {
	if resizer == nil {
		resizer = rdefault.New()
	}
	return &Renderer{frames: frames, resizer: resizer}
}

func (r *Renderer) Paint(buf *buffer.Buffer) error {
	if r == nil || r.frames == nil {
		return errors.NilReceiver()
	}
	if buf == nil {
		return errors.NilParam()
	}
	frame, err := r.frames.Next()
	if err != nil {
		return err
	}
	size := image.Pt(int(buf.Width), int(buf.Height))
	if frame.Rect.Size() == size {
		r.rgba = render.ToRGBA(r.rgba, frame)
		return buf.Blit(r.rgba)
	}
	out, err := r.resizer.Resize(frame, size)
	if err != nil {
		return err
	}
	return buf.Blit(out)
}
