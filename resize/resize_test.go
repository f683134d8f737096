package resize_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/resize"
)

func frame() *image.YCbCr {
	m := image.NewYCbCr(image.Rect(0, 0, 32, 16), image.YCbCrSubsampleRatio420)
	for i := range m.Y {
		m.Y[i] = 0xa0
	}
	for i := range m.Cb {
		m.Cb[i], m.Cr[i] = 0x80, 0x80
	}
	return m
}

func TestResizers(t *testing.T) {
	for _, name := range resize.Names() {
		if name == `caire` {
			// too slow for this grid
			continue
		}
		t.Run(name, func(t *testing.T) {
			r, err := resize.New(name)
			require.NoError(t, err)
			size := image.Pt(64, 40)
			m, err := r.Resize(frame(), size)
			require.NoError(t, err)
			assert.Equal(t, size, m.Bounds().Size())

			// gray stays gray
			c := color.RGBAModel.Convert(m.At(32, 20)).(color.RGBA)
			assert.InDelta(t, 0xa0, int(c.G), 8)
			assert.InDelta(t, int(c.R), int(c.B), 8)

			_, err = r.Resize(frame(), image.Point{})
			assert.True(t, errors.Is(err, errors.ErrRender))
		})
	}
}

func TestUnknownResizer(t *testing.T) {
	_, err := resize.New(`nope`)
	assert.True(t, errors.Is(err, errors.ErrConfig))
	r, err := resize.New(``)
	require.NoError(t, err)
	assert.NotNil(t, r)
	r, err = resize.New(`CatmullRom`)
	require.NoError(t, err)
	assert.NotNil(t, r)
}
