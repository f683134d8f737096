package composite_test

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/render/composite"
	"github.com/srlehn/drmswap/resize/xdraw"
)

// i420 returns n uniformly gray frames, frame i having luma lumas[i].
func i420(size image.Point, lumas ...byte) []byte {
	var b []byte
	ylen := size.X * size.Y
	clen := int(composite.FrameLen(size)) - ylen
	for _, l := range lumas {
		b = append(b, bytes.Repeat([]byte{l}, ylen)...)
		b = append(b, bytes.Repeat([]byte{0x80}, clen)...)
	}
	return b
}

func TestFrameLen(t *testing.T) {
	assert.Equal(t, int64(6), composite.FrameLen(image.Pt(2, 2)))
	assert.Equal(t, int64(9+2*4), composite.FrameLen(image.Pt(3, 3)))
}

func TestRawFramesLoop(t *testing.T) {
	size := image.Pt(4, 2)
	data := i420(size, 10, 20, 30)
	// trailing partial frame
	data = append(data, 1, 2, 3)
	frames, err := composite.NewRawFrames(bytes.NewReader(data), size)
	require.NoError(t, err)
	assert.Equal(t, int64(3), frames.Count())

	var got []byte
	for i := 0; i < 7; i++ {
		f, err := frames.Next()
		require.NoError(t, err)
		got = append(got, f.Y[0])
	}
	assert.Equal(t, []byte{10, 20, 30, 10, 20, 30, 10}, got)
}

type readerAtOnly struct{ r *bytes.Reader }

func (r readerAtOnly) ReadAt(p []byte, off int64) (int, error) { return r.r.ReadAt(p, off) }

func TestRawFramesUnknownLength(t *testing.T) {
	size := image.Pt(2, 2)
	frames, err := composite.NewRawFrames(readerAtOnly{bytes.NewReader(i420(size, 1, 2))}, size)
	require.NoError(t, err)
	assert.Equal(t, int64(0), frames.Count())

	var got []byte
	for i := 0; i < 5; i++ {
		f, err := frames.Next()
		require.NoError(t, err)
		got = append(got, f.Y[3])
	}
	assert.Equal(t, []byte{1, 2, 1, 2, 1}, got)
	assert.Equal(t, int64(2), frames.Count())
}

func TestRawFramesEmpty(t *testing.T) {
	_, err := composite.NewRawFrames(bytes.NewReader(nil), image.Pt(2, 2))
	assert.Error(t, err)

	frames, err := composite.NewRawFrames(readerAtOnly{bytes.NewReader(nil)}, image.Pt(2, 2))
	require.NoError(t, err)
	_, err = frames.Next()
	assert.Error(t, err)

	_, err = composite.NewRawFrames(bytes.NewReader(nil), image.Pt(0, 2))
	assert.Error(t, err)
}

func TestPaintScales(t *testing.T) {
	size := image.Pt(4, 4)
	frames, err := composite.NewRawFrames(bytes.NewReader(i420(size, 0xeb)), size)
	require.NoError(t, err)
	r := composite.New(frames, xdraw.ApproxBiLinear())

	buf, err := buffer.NewHeap().Allocate(10, 6)
	require.NoError(t, err)
	require.NoError(t, r.Paint(buf))
	c := color.RGBAModel.Convert(buf.At(9, 5)).(color.RGBA)
	assert.InDelta(t, 0xeb, int(c.R), 4)
	assert.InDelta(t, int(c.R), int(c.G), 2)
	assert.InDelta(t, int(c.R), int(c.B), 2)
}
