package composite

import (
	"image"
	"io"

	"github.com/srlehn/drmswap/internal/errors"
)

// RawFrames reads consecutive planar I420 (YUV 4:2:0) frames of a fixed size,
// starting over at the first frame after the last one.
type RawFrames struct {
	r     io.ReaderAt
	size  image.Point
	img   *image.YCbCr
	index int64
	count int64 // 0 if unknown
}

// FrameLen is the size in bytes of one I420 frame.
func FrameLen(size image.Point) int64 {
	cw, ch := (size.X+1)/2, (size.Y+1)/2
	return int64(size.X*size.Y + 2*cw*ch)
}

// NewRawFrames reads frames of size from r. If r has a Size method, like
// *os.File wrapped in an io.SectionReader or *bytes.Reader, trailing partial
// frames are ignored.
func NewRawFrames(r io.ReaderAt, size image.Point) (*RawFrames, error) {
	if r == nil {
		return nil, errors.NilParam()
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, errors.Kindf(errors.ErrConfig, `invalid frame size %dx%d`, size.X, size.Y)
	}
	f := &RawFrames{
		r:    r,
		size: size,
		img:  image.NewYCbCr(image.Rectangle{Max: size}, image.YCbCrSubsampleRatio420),
	}
	if sz, ok := r.(interface{ Size() int64 }); ok {
		f.count = sz.Size() / FrameLen(size)
		if f.count == 0 {
			return nil, errors.Kindf(errors.ErrConfig, `input holds no complete %dx%d frame`, size.X, size.Y)
		}
	}
	return f, nil
}

// Count is the number of frames, 0 if unknown.
func (f *RawFrames) Count() int64 { return f.count }

// Index is the index of the frame returned by the next call to Next.
func (f *RawFrames) Index() int64 { return f.index }

// Next returns the next frame. The image is reused by the following call.
func (f *RawFrames) Next() (*image.YCbCr, error) {
	if f.count > 0 && f.index >= f.count {
		f.index = 0
	}
	err := f.read(f.index)
	if errors.Is(err, io.EOF) && f.index > 0 {
		f.count = f.index
		f.index = 0
		err = f.read(0)
	}
	if err != nil {
		return nil, err
	}
	f.index++
	return f.img, nil
}

func (f *RawFrames) read(index int64) error {
	off := index * FrameLen(f.size)
	for _, plane := range [][]byte{f.img.Y, f.img.Cb, f.img.Cr} {
		n, err := f.r.ReadAt(plane, off)
		if n < len(plane) {
			if err == nil || errors.Is(err, io.EOF) {
				return io.EOF
			}
			return errors.New(err)
		}
		off += int64(n)
	}
	return nil
}
