package raster_test

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/render/raster"
)

func assertNear(t *testing.T, want color.RGBA, got color.Color, msg string) {
	t.Helper()
	c := color.RGBAModel.Convert(got).(color.RGBA)
	assert.InDelta(t, want.R, c.R, 24, msg)
	assert.InDelta(t, want.G, c.G, 24, msg)
	assert.InDelta(t, want.B, c.B, 24, msg)
}

func TestCorners(t *testing.T) {
	buf, err := buffer.NewHeap().Allocate(64, 48)
	require.NoError(t, err)
	r := raster.New()
	require.NoError(t, r.Paint(buf))

	assertNear(t, color.RGBA{R: 0xff}, buf.At(0, 0), `top left`)
	assertNear(t, color.RGBA{G: 0xff}, buf.At(63, 0), `top right`)
	assertNear(t, color.RGBA{B: 0xff}, buf.At(0, 47), `bottom left`)
	assertNear(t, color.RGBA{R: 0xff, G: 0xff}, buf.At(63, 47), `bottom right`)
}

func TestHueRotates(t *testing.T) {
	buf, err := buffer.NewHeap().Allocate(16, 16)
	require.NoError(t, err)
	r := raster.New()
	r.HueStep = 120
	require.NoError(t, r.Paint(buf))
	first := buf.At(0, 0)
	require.NoError(t, r.Paint(buf))
	// red rotated by 120 degrees is green
	assertNear(t, color.RGBA{G: 0xff}, buf.At(0, 0), `rotated top left`)
	assert.NotEqual(t, first, buf.At(0, 0))
}

func TestRotateFullCircle(t *testing.T) {
	c := raster.DefaultCorners.Rotate(360)
	for i := range c {
		assert.InDelta(t, raster.DefaultCorners[i].R, c[i].R, 1e-6)
		assert.InDelta(t, raster.DefaultCorners[i].G, c[i].G, 1e-6)
		assert.InDelta(t, raster.DefaultCorners[i].B, c[i].B, 1e-6)
	}
}
