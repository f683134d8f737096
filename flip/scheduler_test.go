package flip_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/drmswap/binding"
	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/flip"
	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/internal/testutil"
	"github.com/srlehn/drmswap/quit"
	"github.com/srlehn/drmswap/swapchain"
)

type fixture struct {
	disp  *testutil.Display
	chain *swapchain.Chain
	cache *binding.Cache
	quit  *quit.Pipe
	rend  *testutil.Renderer
}

func newFixture(t *testing.T, buffers int) *fixture {
	t.Helper()
	disp, err := testutil.NewDisplay(16, 8)
	require.NoError(t, err)
	t.Cleanup(func() { _ = disp.Close() })

	var bufs []*buffer.Buffer
	for i := 0; i < buffers; i++ {
		b, err := disp.Allocate(16, 8)
		require.NoError(t, err)
		bufs = append(bufs, b)
	}
	chain, err := swapchain.New(bufs...)
	require.NoError(t, err)
	require.NoError(t, chain.Front().Fill(testutil.FrameColor(0)))
	cache, err := binding.New(disp, nil)
	require.NoError(t, err)
	q, err := quit.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })

	return &fixture{disp: disp, chain: chain, cache: cache, quit: q, rend: &testutil.Renderer{}}
}

func (f *fixture) scheduler(t *testing.T, cfg flip.Config) *flip.Scheduler {
	t.Helper()
	cfg.Chain, cfg.Cache, cfg.Renderer, cfg.Presenter = f.chain, f.cache, f.rend, f.disp
	cfg.Quit = append(cfg.Quit, f.quit)
	s, err := flip.New(cfg)
	require.NoError(t, err)
	return s
}

// quitAfter triggers termination once frames frames were painted.
func (f *fixture) quitAfter(t *testing.T, frames int) {
	f.rend.OnPaint = func(n int, buf *buffer.Buffer) {
		if len(f.chain.Buffers()) > 1 {
			assert.NotSame(t, f.chain.Front(), buf, `painted the displayed buffer in frame %d`, n)
		}
		if n == frames {
			f.quit.Trigger()
		}
	}
}

func TestFiveCompletions(t *testing.T) {
	f := newFixture(t, 2)
	f.quitAfter(t, 5)
	s := f.scheduler(t, flip.Config{})

	require.NoError(t, s.Start())
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, uint64(5), f.chain.Advances())
	assert.Len(t, f.rend.Painted, 5)
	created, released := f.cache.Stats()
	assert.Equal(t, uint64(2), created)
	assert.Equal(t, uint64(0), released)

	submits, completions, discarded := s.Counts()
	assert.Equal(t, uint64(6), submits)
	assert.Equal(t, uint64(5), completions)
	assert.Equal(t, uint64(1), discarded)
	assert.Nil(t, s.Pending())
	assert.False(t, f.chain.Pending())
	assert.Empty(t, f.disp.Violations())
}

func TestBuffersAlternate(t *testing.T) {
	f := newFixture(t, 2)
	f.quitAfter(t, 5)
	s := f.scheduler(t, flip.Config{})
	first, second := f.chain.Front().ID(), f.chain.Back().ID()

	require.NoError(t, s.Start())
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []uint64{second, first, second, first, second}, f.rend.Painted)
	assert.Equal(t, []string{
		`alloc 1`, `alloc 2`,
		`add 1`, `present 1 1`,
		`add 2`, `present 2 2`,
		`present 1 3`,
		`present 2 4`,
		`present 1 5`,
		`present 2 6`,
	}, f.disp.Ops())
}

func TestSingleBufferRepaintsFront(t *testing.T) {
	f := newFixture(t, 1)
	f.quitAfter(t, 3)
	s := f.scheduler(t, flip.Config{})

	require.NoError(t, s.Start())
	require.NoError(t, s.Run(context.Background()))

	id := f.chain.Front().ID()
	assert.Equal(t, []uint64{id, id, id}, f.rend.Painted)
	created, _ := f.cache.Stats()
	assert.Equal(t, uint64(1), created)
	assert.Equal(t, uint64(3), f.chain.Advances())
}

func TestQuitDrainsPendingFlip(t *testing.T) {
	f := newFixture(t, 2)
	f.disp.Manual = true
	s := f.scheduler(t, flip.Config{})

	require.NoError(t, s.Start())
	require.NotNil(t, s.Pending())
	assert.Equal(t, uint64(1), s.Pending().Token)

	f.quit.Trigger()
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	select {
	case err := <-done:
		t.Fatalf(`returned with flip in flight: %v`, err)
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, 1, f.disp.Complete())
	require.NoError(t, <-done)

	assert.Empty(t, f.rend.Painted)
	_, completions, discarded := s.Counts()
	assert.Equal(t, uint64(0), completions)
	assert.Equal(t, uint64(1), discarded)
	assert.Nil(t, s.Pending())
}

func TestDrainWaitsWithoutTimeout(t *testing.T) {
	f := newFixture(t, 2)
	f.disp.Manual = true
	s := f.scheduler(t, flip.Config{})

	require.NoError(t, s.Start())
	f.quit.Trigger()
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	// longer than any bound a caller would pick by default
	select {
	case err := <-done:
		t.Fatalf(`returned with flip in flight: %v`, err)
	case <-time.After(1500 * time.Millisecond):
	}
	assert.Equal(t, 1, f.disp.Complete())
	require.NoError(t, <-done)
	assert.Nil(t, s.Pending())
}

func TestDrainTimeout(t *testing.T) {
	f := newFixture(t, 2)
	f.disp.Manual = true
	s := f.scheduler(t, flip.Config{DrainTimeout: 20 * time.Millisecond})

	require.NoError(t, s.Start())
	f.quit.Trigger()
	err := s.Run(context.Background())
	assert.True(t, errors.Is(err, errors.ErrDrainTimeout))
	assert.NotNil(t, s.Pending())
}

func TestUnexpectedToken(t *testing.T) {
	f := newFixture(t, 2)
	f.disp.Manual = true
	s := f.scheduler(t, flip.Config{DrainTimeout: 20 * time.Millisecond})

	require.NoError(t, s.Start())
	f.disp.Inject(flip.Completion{Token: 99})
	err := s.Run(context.Background())
	assert.True(t, errors.Is(err, errors.ErrPresent))
	assert.Empty(t, f.rend.Painted)
}

func TestRendererError(t *testing.T) {
	f := newFixture(t, 2)
	f.rend.FailAt = 2
	s := f.scheduler(t, flip.Config{})

	require.NoError(t, s.Start())
	err := s.Run(context.Background())
	assert.True(t, errors.Is(err, errors.ErrRender))
	assert.Len(t, f.rend.Painted, 1)
	assert.Nil(t, s.Pending())
	submits, _, _ := s.Counts()
	assert.Equal(t, uint64(2), submits)
}

func TestPresentError(t *testing.T) {
	f := newFixture(t, 2)
	f.disp.FailPresent = 3
	s := f.scheduler(t, flip.Config{})

	require.NoError(t, s.Start())
	err := s.Run(context.Background())
	assert.True(t, errors.Is(err, errors.ErrPresent))
	assert.Nil(t, s.Pending())
	assert.False(t, f.chain.Pending())
	assert.Len(t, f.rend.Painted, 2)
}

func TestStartPresentError(t *testing.T) {
	f := newFixture(t, 2)
	f.disp.FailPresent = 1
	s := f.scheduler(t, flip.Config{})
	assert.True(t, errors.Is(s.Start(), errors.ErrPresent))
	assert.Nil(t, s.Pending())
}

func TestContextCancel(t *testing.T) {
	f := newFixture(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.rend.OnPaint = func(n int, _ *buffer.Buffer) {
		if n == 3 {
			cancel()
		}
	}
	s := f.scheduler(t, flip.Config{})

	require.NoError(t, s.Start())
	require.NoError(t, s.Run(ctx))
	assert.GreaterOrEqual(t, len(f.rend.Painted), 3)
	assert.Nil(t, s.Pending())
}

func TestReporter(t *testing.T) {
	f := newFixture(t, 2)
	f.quitAfter(t, 4)
	now := time.Unix(0, 0)
	var reports []flip.Stats
	s := f.scheduler(t, flip.Config{
		Reporter: func(st flip.Stats) { reports = append(reports, st) },
		Now: func() time.Time {
			now = now.Add(10 * time.Millisecond)
			return now
		},
	})

	require.NoError(t, s.Start())
	require.NoError(t, s.Run(context.Background()))

	require.Len(t, reports, 4)
	for i, st := range reports {
		assert.Equal(t, uint64(i+1), st.Frames)
	}
	assert.Equal(t, 20*time.Millisecond, reports[3].Delta)
	assert.InDelta(t, 50, reports[3].InstantFPS(), 0.001)
	assert.Equal(t, reports[3], s.Stats())
}

func TestNewRequiresParts(t *testing.T) {
	_, err := flip.New(flip.Config{})
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	st := flip.Stats{Frames: 10, Elapsed: 2 * time.Second, Delta: 100 * time.Millisecond}
	assert.InDelta(t, 5, st.AverageFPS(), 0.001)
	assert.InDelta(t, 10, st.InstantFPS(), 0.001)
	assert.Zero(t, flip.Stats{}.AverageFPS())
	assert.Zero(t, flip.Stats{}.InstantFPS())
}
