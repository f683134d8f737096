package binding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/drmswap/binding"
	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/internal/testutil"
)

func setup(t *testing.T) (*testutil.Display, *binding.Cache, []*buffer.Buffer) {
	t.Helper()
	disp, err := testutil.NewDisplay(8, 8)
	require.NoError(t, err)
	t.Cleanup(func() { _ = disp.Close() })
	cache, err := binding.New(disp, nil)
	require.NoError(t, err)
	var bufs []*buffer.Buffer
	for i := 0; i < 2; i++ {
		b, err := disp.Allocate(8, 8)
		require.NoError(t, err)
		bufs = append(bufs, b)
	}
	return disp, cache, bufs
}

func TestResolveIsLazyAndCached(t *testing.T) {
	disp, cache, bufs := setup(t)
	assert.Equal(t, 0, disp.Framebuffers())

	fb1, err := cache.Resolve(bufs[0])
	require.NoError(t, err)
	again, err := cache.Resolve(bufs[0])
	require.NoError(t, err)
	assert.Equal(t, fb1, again)

	fb2, err := cache.Resolve(bufs[1])
	require.NoError(t, err)
	assert.NotEqual(t, fb1, fb2)
	assert.Equal(t, 2, disp.Framebuffers())
	assert.Equal(t, 2, cache.Len())

	fb, ok := cache.Lookup(bufs[1])
	assert.True(t, ok)
	assert.Equal(t, fb2, fb)

	created, _ := cache.Stats()
	assert.Equal(t, uint64(2), created)
}

func TestResolveFailure(t *testing.T) {
	disp, cache, bufs := setup(t)
	disp.FailAdd = 1
	_, err := cache.Resolve(bufs[0])
	assert.True(t, errors.Is(err, errors.ErrResource))
	_, ok := cache.Lookup(bufs[0])
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestRelease(t *testing.T) {
	disp, cache, bufs := setup(t)
	_, err := cache.Resolve(bufs[0])
	require.NoError(t, err)

	require.NoError(t, cache.Release(bufs[1]), `unbound buffer`)
	require.NoError(t, cache.Release(bufs[0]))
	require.NoError(t, cache.Release(bufs[0]))
	assert.Equal(t, 0, disp.Framebuffers())
	_, ok := cache.Lookup(bufs[0])
	assert.False(t, ok)

	require.NoError(t, disp.Free(bufs[0]))
	assert.Empty(t, disp.Violations())
}

func TestResolveAfterRelease(t *testing.T) {
	disp, cache, bufs := setup(t)
	first, err := cache.Resolve(bufs[0])
	require.NoError(t, err)
	require.NoError(t, cache.Release(bufs[0]))

	second, err := cache.Resolve(bufs[0])
	require.NoError(t, err)
	assert.NotEqual(t, first, second, `released framebuffer handed out again`)
	assert.Equal(t, 1, disp.Framebuffers())
	fb, ok := cache.Lookup(bufs[0])
	require.True(t, ok)
	assert.Equal(t, second, fb)

	created, released := cache.Stats()
	assert.Equal(t, uint64(2), created)
	assert.Equal(t, uint64(1), released)
}

func TestReleaseAll(t *testing.T) {
	disp, cache, bufs := setup(t)
	for _, b := range bufs {
		_, err := cache.Resolve(b)
		require.NoError(t, err)
	}
	assert.Equal(t, []binding.Binding{
		{BufferID: bufs[0].ID(), Framebuffer: 1},
		{BufferID: bufs[1].ID(), Framebuffer: 2},
	}, cache.Bindings())

	require.NoError(t, cache.Close())
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, 0, disp.Framebuffers())
	_, released := cache.Stats()
	assert.Equal(t, uint64(2), released)
	assert.Equal(t, []string{`alloc 1`, `alloc 2`, `add 1`, `add 2`, `rm 1`, `rm 2`}, disp.Ops())
}

func TestFreeWhileBoundIsDetected(t *testing.T) {
	disp, cache, bufs := setup(t)
	_, err := cache.Resolve(bufs[0])
	require.NoError(t, err)
	assert.Error(t, disp.Free(bufs[0]))
	assert.Len(t, disp.Violations(), 1)
}
