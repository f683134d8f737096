package swapchain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/swapchain"
)

func newBuffers(t *testing.T, n int) []*buffer.Buffer {
	t.Helper()
	h := buffer.NewHeap()
	var bufs []*buffer.Buffer
	for i := 0; i < n; i++ {
		b, err := h.Allocate(4, 4)
		require.NoError(t, err)
		bufs = append(bufs, b)
	}
	return bufs
}

func TestNewBufferCount(t *testing.T) {
	_, err := swapchain.New()
	assert.True(t, errors.Is(err, errors.ErrConfig))
	_, err = swapchain.New(newBuffers(t, 3)...)
	assert.True(t, errors.Is(err, errors.ErrConfig))

	bufs := newBuffers(t, 1)
	_, err = swapchain.New(bufs[0], bufs[0])
	assert.Error(t, err)
}

func TestFrontIndexAlternates(t *testing.T) {
	for n := 0; n < 9; n++ {
		c, err := swapchain.New(newBuffers(t, 2)...)
		require.NoError(t, err)
		initial := c.FrontIndex()
		for i := 0; i < n; i++ {
			c.Advance()
		}
		assert.Equal(t, initial^(n%2), c.FrontIndex(), `after %d advances`, n)
		assert.Equal(t, 1-c.FrontIndex(), c.BackIndex())
		assert.NotSame(t, c.Front(), c.Back())
		assert.Equal(t, uint64(n), c.Advances())
	}
}

func TestSingleBuffer(t *testing.T) {
	bufs := newBuffers(t, 1)
	c, err := swapchain.New(bufs...)
	require.NoError(t, err)
	assert.Same(t, bufs[0], c.Front())
	assert.Same(t, bufs[0], c.Back())
	c.Advance()
	assert.Equal(t, 0, c.FrontIndex())
	assert.Same(t, bufs[0], c.Back())
}

func TestFlipStateMachine(t *testing.T) {
	c, err := swapchain.New(newBuffers(t, 2)...)
	require.NoError(t, err)
	assert.Equal(t, swapchain.Idle, c.State())

	err = c.EndFlip()
	assert.True(t, errors.Is(err, errors.ErrNotPending))

	require.NoError(t, c.BeginFlip())
	assert.True(t, c.Pending())
	err = c.BeginFlip()
	assert.True(t, errors.Is(err, errors.ErrFlipPending))

	require.NoError(t, c.EndFlip())
	assert.Equal(t, `idle`, c.State().String())
}
