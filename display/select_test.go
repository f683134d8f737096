package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/kms"
)

func TestParseModeSpec(t *testing.T) {
	tests := []struct {
		in   string
		want ModeSpec
		err  bool
	}{
		{``, ModeSpec{}, false},
		{`1920x1080`, ModeSpec{Width: 1920, Height: 1080}, false},
		{`1280x720@50`, ModeSpec{Width: 1280, Height: 720, Refresh: 50}, false},
		{`1280`, ModeSpec{}, true},
		{`0x720`, ModeSpec{}, true},
		{`axb`, ModeSpec{}, true},
		{`1280x720@`, ModeSpec{}, true},
	}
	for _, tt := range tests {
		got, err := ParseModeSpec(tt.in)
		if tt.err {
			assert.True(t, errors.Is(err, errors.ErrConfig), tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSelectConnector(t *testing.T) {
	modes := []kms.ModeInfo{{Hdisplay: 800, Vdisplay: 600}}
	conns := []*kms.Connector{
		{ID: 30, Type: 11, TypeID: 1, Connection: kms.Connected, Modes: modes},
		{ID: 31, Type: 10, TypeID: 1, Connection: kms.Disconnected},
		{ID: 32, Type: 14, TypeID: 1, Connection: kms.Connected, Modes: modes},
		{ID: 33, Type: 11, TypeID: 2, Connection: kms.Connected},
	}

	c, err := selectConnector(conns, ``)
	require.NoError(t, err)
	assert.Equal(t, uint32(32), c.ID, `last connected connector with modes`)

	c, err = selectConnector(conns, `HDMI-A-1`)
	require.NoError(t, err)
	assert.Equal(t, uint32(30), c.ID)

	c, err = selectConnector(conns, `32`)
	require.NoError(t, err)
	assert.Equal(t, `eDP-1`, c.Name())

	_, err = selectConnector(conns, `DP-1`)
	assert.True(t, errors.Is(err, errors.ErrConfig))
	_, err = selectConnector(conns, `HDMI-A-2`)
	assert.True(t, errors.Is(err, errors.ErrConfig))
	_, err = selectConnector(conns, `VGA-1`)
	assert.True(t, errors.Is(err, errors.ErrConfig))
	_, err = selectConnector(conns[1:2], ``)
	assert.True(t, errors.Is(err, errors.ErrConfig))
}

func TestSelectMode(t *testing.T) {
	modes := []kms.ModeInfo{
		{Hdisplay: 1920, Vdisplay: 1080, Vrefresh: 60},
		{Hdisplay: 1280, Vdisplay: 720, Vrefresh: 60, Type: kms.ModeTypePreferred},
		{Hdisplay: 1280, Vdisplay: 720, Vrefresh: 50},
	}
	m, err := selectMode(modes, ModeSpec{})
	require.NoError(t, err)
	assert.Equal(t, `1280x720@60`, m.String())

	m, err = selectMode(modes[:1], ModeSpec{})
	require.NoError(t, err)
	assert.Equal(t, uint16(1920), m.Hdisplay)

	m, err = selectMode(modes, ModeSpec{Width: 1280, Height: 720, Refresh: 50})
	require.NoError(t, err)
	assert.Equal(t, uint32(50), m.Vrefresh)

	_, err = selectMode(modes, ModeSpec{Width: 640, Height: 480})
	assert.True(t, errors.Is(err, errors.ErrConfig))
	_, err = selectMode(nil, ModeSpec{})
	assert.Error(t, err)
}

func TestSelectCrtc(t *testing.T) {
	crtcs := []uint32{40, 41, 42}
	conn := &kms.Connector{ID: 30, Encoders: []uint32{50, 51}}
	encoders := map[uint32]*kms.Encoder{
		50: {ID: 50, PossibleCrtcs: 0},
		51: {ID: 51, PossibleCrtcs: 0b011},
	}
	id, err := selectCrtc(conn, encoders, crtcs)
	require.NoError(t, err)
	assert.Equal(t, uint32(41), id)

	conn.EncoderID = 50
	encoders[50].CrtcID = 42
	id, err = selectCrtc(conn, encoders, crtcs)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), id, `crtc already driving the connector`)

	_, err = selectCrtc(&kms.Connector{Encoders: []uint32{50}}, map[uint32]*kms.Encoder{50: {}}, crtcs)
	assert.True(t, errors.Is(err, errors.ErrConfig))
}
