// Package drmswap shows continuously rendered frames on a Linux DRM/KMS
// display using one or two scanout buffers that are flipped at vertical
// blank.
//
//	s, err := drmswap.Initialize(ctx, drmswap.SetRendererName(`solid`, render.Options{}))
//	if err != nil {
//		return err
//	}
//	return s.Run(ctx)
package drmswap

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/srlehn/drmswap/binding"
	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/display"
	"github.com/srlehn/drmswap/flip"
	"github.com/srlehn/drmswap/internal"
	"github.com/srlehn/drmswap/internal/consts"
	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/internal/linux"
	"github.com/srlehn/drmswap/internal/logx"
	"github.com/srlehn/drmswap/render"
	"github.com/srlehn/drmswap/swapchain"
)

// DefaultBufferCount is used without SetBufferCount.
const DefaultBufferCount = 2

// Session owns a display, its buffers and the flip loop.
type Session struct {
	// configuration
	target       display.Target
	device       string
	displayOpts  display.Options
	sim          bool
	bufferCount  int
	renderer     render.Renderer
	rendererName string
	rendererOpts render.Options
	logger       *slog.Logger
	quit         []flip.Waitable
	reporter     flip.Reporter
	drainTimeout time.Duration
	console      *os.File

	closer  internal.Closer
	buffers []*buffer.Buffer
	chain   *swapchain.Chain
	cache   *binding.Cache
	sched   *flip.Scheduler
	running bool
}

var _ logx.LoggerProvider = (*Session)(nil)

// Initialize acquires the display and the buffers, shows the first frame and
// requests the first flip. On failure everything acquired so far is released.
func Initialize(ctx context.Context, opts ...Option) (_ *Session, err error) {
	if ctx == nil {
		return nil, errors.NilParam()
	}
	s := &Session{
		device:      consts.DefaultDevice,
		bufferCount: DefaultBufferCount,
		closer:      internal.NewCloser(),
	}
	defer func() {
		if err != nil {
			logx.IsErr(err, s, slog.LevelError)
			err = errors.Join(err, s.closer.Close())
		}
	}()
	if err := s.setOptions(opts...); err != nil {
		return nil, err
	}
	if s.bufferCount < 1 || s.bufferCount > 2 {
		return nil, errors.Kindf(errors.ErrConfig, `buffer count must be 1 or 2, got %d`, s.bufferCount)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.New(err)
	}
	if s.displayOpts.Logger == nil {
		s.displayOpts.Logger = s
	}

	// released in reverse order
	if err := s.openTarget(); err != nil {
		return nil, err
	}
	if s.console != nil {
		restore, err := linux.GraphicsMode(s.console.Fd())
		if err != nil {
			logx.Warn(`console graphics mode unavailable`, s, `err`, err)
		}
		s.closer.OnClose(restore)
	}
	if err := s.allocateBuffers(); err != nil {
		return nil, err
	}
	if s.cache, err = binding.New(s.target, s); err != nil {
		return nil, err
	}
	s.closer.AddClosers(s.cache)
	if s.chain, err = swapchain.New(s.buffers...); err != nil {
		return nil, err
	}
	if err := s.setupRenderer(); err != nil {
		return nil, err
	}

	front := s.chain.Front()
	if err := logx.TimeIt(func() error { return s.renderer.Paint(front) }, `initial paint`, s); err != nil {
		return nil, errors.Kind(errors.ErrRender, err)
	}
	fb, err := s.cache.Resolve(front)
	if err != nil {
		return nil, err
	}
	if err := s.target.Configure(fb); err != nil {
		return nil, errors.Kind(errors.ErrConfig, err)
	}
	s.closer.OnClose(s.target.Restore)

	s.sched, err = flip.New(flip.Config{
		Chain:        s.chain,
		Cache:        s.cache,
		Renderer:     s.renderer,
		Presenter:    s.target,
		Quit:         s.quit,
		Reporter:     s.reporter,
		DrainTimeout: s.drainTimeout,
		Logger:       s,
	})
	if err != nil {
		return nil, err
	}
	if err := s.sched.Start(); err != nil {
		return nil, err
	}
	mode := s.target.Mode()
	logx.Info(`session initialized`, s, `mode`, mode.String(), `buffers`, len(s.buffers), `fb`, fb)
	return s, nil
}

func (s *Session) openTarget() error {
	if s.target != nil {
		// registered by SetTarget
		return nil
	}
	var err error
	if s.sim {
		s.target, err = display.NewSim(s.displayOpts)
	} else {
		s.target, err = openDevice(s.device, s.displayOpts)
	}
	if err != nil {
		return err
	}
	s.closer.AddClosers(s.target)
	return nil
}

func (s *Session) allocateBuffers() error {
	mode := s.target.Mode()
	alloc := s.target.Allocator()
	if alloc == nil {
		return errors.Kindf(errors.ErrResource, `display has no buffer allocator`)
	}
	for i := 0; i < s.bufferCount; i++ {
		buf, err := alloc.Allocate(mode.Width, mode.Height)
		if err != nil {
			return errors.Kind(errors.ErrResource, err)
		}
		s.buffers = append(s.buffers, buf)
		s.closer.OnClose(func() error { return alloc.Free(buf) })
		logx.Debug(`buffer allocated`, s, `buffer`, buf.ID(), `stride`, buf.Stride, `size`, buf.Size)
	}
	return nil
}

func (s *Session) setupRenderer() error {
	if s.renderer != nil {
		return nil
	}
	name := s.rendererName
	if len(name) == 0 {
		name = consts.RendererSolid
	}
	mode := s.target.Mode()
	opts := s.rendererOpts
	opts.Width, opts.Height = int(mode.Width), int(mode.Height)
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	r, err := render.New(name, opts)
	if err != nil {
		return err
	}
	s.renderer = r
	return nil
}

// Run flips frames until a quit source becomes readable or ctx is done, then
// tears the session down. The returned error joins the loop and teardown
// errors.
func (s *Session) Run(ctx context.Context) error {
	if s == nil || s.sched == nil {
		return errors.NilReceiver()
	}
	if s.closer.Closed() {
		return errors.New(errors.ErrClosed)
	}
	if s.running {
		return errors.New(`session already running`)
	}
	s.running = true
	errRun := s.sched.Run(ctx)
	s.running = false
	if errors.Is(errRun, errors.ErrDrainTimeout) {
		logx.Warn(`tearing down with a flip in flight`, s)
	}
	submits, completions, discarded := s.sched.Counts()
	logx.Info(`flip loop ended`, s, `submits`, submits, `completions`, completions, `discarded`, discarded)
	return errors.Join(errRun, s.Close())
}

// Close restores the display configuration and releases bindings, buffers and
// the display, in this order. Close must not be called while Run is active.
func (s *Session) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	if s.closer.Closed() {
		return nil
	}
	logx.Debug(`session teardown`, s)
	return s.closer.Close()
}

func (s *Session) Logger() *slog.Logger {
	if s == nil {
		return nil
	}
	return s.logger
}

func (s *Session) Target() display.Target     { return s.target }
func (s *Session) Buffers() []*buffer.Buffer  { return s.buffers }
func (s *Session) Chain() *swapchain.Chain    { return s.chain }
func (s *Session) Bindings() *binding.Cache   { return s.cache }
func (s *Session) Scheduler() *flip.Scheduler { return s.sched }
