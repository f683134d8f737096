package display_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/srlehn/drmswap/display"
	"github.com/srlehn/drmswap/flip"
)

func readable(fd int, timeout time.Duration) bool {
	pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(pfd, int(timeout.Milliseconds()))
	return err == nil && n > 0
}

func TestSimPresent(t *testing.T) {
	sim, err := display.NewSim(display.Options{Mode: display.ModeSpec{Width: 64, Height: 32, Refresh: 200}})
	require.NoError(t, err)
	defer sim.Close()
	assert.Equal(t, `64x32@200`, sim.Mode().String())

	buf, err := sim.Allocator().Allocate(64, 32)
	require.NoError(t, err)
	fb, err := sim.AddFramebuffer(buf.Geometry)
	require.NoError(t, err)

	assert.Error(t, sim.Present(fb, 1), `not configured`)
	require.NoError(t, sim.Configure(fb))
	assert.Equal(t, fb, sim.Scanout())

	require.NoError(t, sim.Present(fb, 1))
	assert.Error(t, sim.Present(fb, 2), `busy`)

	require.True(t, readable(sim.Fd(), time.Second))
	comps, err := sim.ReadCompletions()
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, flip.Completion{Token: 1, Sequence: 1, Time: comps[0].Time}, comps[0])
	assert.False(t, readable(sim.Fd(), 0))

	assert.Error(t, sim.Present(fb+1, 3), `unknown framebuffer`)

	require.NoError(t, sim.RemoveFramebuffer(fb))
	assert.Error(t, sim.RemoveFramebuffer(fb))
	assert.Equal(t, uint32(0), sim.Scanout())
	require.NoError(t, sim.Allocator().Free(buf))

	require.NoError(t, sim.Restore())
	require.NoError(t, sim.Close())
	assert.NoError(t, sim.Close())
}

func TestModeFrameInterval(t *testing.T) {
	assert.Equal(t, 20*time.Millisecond, display.Mode{Refresh: 50}.FrameInterval())
	assert.Equal(t, time.Second/60, display.Mode{}.FrameInterval())
}
