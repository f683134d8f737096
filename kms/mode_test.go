//go:build linux

package kms

import (
	"testing"

	"github.com/NeowayLabs/drm/mode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeInfoConversion(t *testing.T) {
	in := mode.Info{Hdisplay: 1920, Vdisplay: 1080, Vrefresh: 60, Type: ModeTypePreferred}
	copy(in.Name[:], `1920x1080`)

	m := fromInfo(in)
	assert.Equal(t, `1920x1080`, m.Name())
	assert.True(t, m.Preferred())
	assert.Equal(t, `1920x1080@60`, m.String())
	assert.Equal(t, in, m.info())
}

func TestDumbDimensions(t *testing.T) {
	w, h, err := dims16(800, 600)
	require.NoError(t, err)
	assert.Equal(t, uint16(800), w)
	assert.Equal(t, uint16(600), h)

	_, _, err = dims16(70000, 600)
	assert.Error(t, err)
}

func TestClosedDevice(t *testing.T) {
	var d *Device
	_, err := d.Resources()
	assert.Error(t, err)
	assert.Error(t, d.PageFlip(1, 2, PageFlipEvent, 3))
	assert.Equal(t, -1, d.Fd())
}
