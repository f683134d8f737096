package kms_test

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/drmswap/kms"
)

func vblankEvent(typ uint32, userData uint64, sec, usec, seq, crtc uint32) []byte {
	b := make([]byte, 32)
	binary.NativeEndian.PutUint32(b[0:], typ)
	binary.NativeEndian.PutUint32(b[4:], 32)
	binary.NativeEndian.PutUint64(b[8:], userData)
	binary.NativeEndian.PutUint32(b[16:], sec)
	binary.NativeEndian.PutUint32(b[20:], usec)
	binary.NativeEndian.PutUint32(b[24:], seq)
	binary.NativeEndian.PutUint32(b[28:], crtc)
	return b
}

func TestParseEvents(t *testing.T) {
	var b []byte
	b = append(b, vblankEvent(kms.EventFlipComplete, 7, 3, 500, 42, 31)...)
	// unknown event type with a payload
	unknown := make([]byte, 16)
	binary.NativeEndian.PutUint32(unknown[0:], 0x80000000)
	binary.NativeEndian.PutUint32(unknown[4:], 16)
	b = append(b, unknown...)
	b = append(b, vblankEvent(kms.EventVBlank, 8, 0, 0, 43, 0)...)

	evs, err := kms.ParseEvents(b)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, kms.Event{
		Type:     kms.EventFlipComplete,
		UserData: 7,
		Time:     3*time.Second + 500*time.Microsecond,
		Sequence: 42,
		CrtcID:   31,
	}, evs[0])
	assert.Equal(t, uint64(8), evs[1].UserData)
	assert.Equal(t, uint32(kms.EventVBlank), evs[1].Type)
}

func TestParseEventsMalformed(t *testing.T) {
	ev := vblankEvent(kms.EventFlipComplete, 1, 0, 0, 0, 0)

	_, err := kms.ParseEvents(ev[:5])
	assert.Error(t, err)

	evs, err := kms.ParseEvents(append(append([]byte{}, ev...), ev[:20]...))
	assert.Error(t, err)
	assert.Len(t, evs, 1)

	bad := append([]byte{}, ev...)
	binary.NativeEndian.PutUint32(bad[4:], 4)
	_, err = kms.ParseEvents(bad)
	assert.Error(t, err)
}

func TestReadEvents(t *testing.T) {
	evs, err := kms.ReadEvents(bytes.NewReader(vblankEvent(kms.EventFlipComplete, 99, 1, 0, 1, 1)))
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, uint64(99), evs[0].UserData)

	_, err = kms.ReadEvents(nil)
	assert.Error(t, err)
}
