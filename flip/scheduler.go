// Package flip drives the present loop: it submits framebuffers for display,
// waits for the controller to report their completion at vertical blank and
// then lets the renderer prepare the next frame.
//
// The loop runs on a single goroutine. At most one present request is
// outstanding at any time, which guarantees that the renderer never writes
// into a buffer the controller may still scan out.
package flip

import (
	"context"
	"time"

	"github.com/srlehn/drmswap/binding"
	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/internal/logx"
	"github.com/srlehn/drmswap/quit"
	"github.com/srlehn/drmswap/render"
	"github.com/srlehn/drmswap/swapchain"
)

// Completion reports that a present request took effect.
type Completion struct {
	Token    uint64        // as passed to Present
	Sequence uint32        // vblank counter
	Crtc     uint32        // zero if the driver doesn't report it
	Time     time.Duration // vblank timestamp, CLOCK_MONOTONIC
}

// Presenter submits framebuffers to the display controller.
type Presenter interface {
	// Present shows fb at the next vertical blank and requests a Completion
	// carrying token.
	Present(fb uint32, token uint64) error
	// Fd becomes readable when completions are available.
	Fd() int
	// ReadCompletions reads the available completions in submission order.
	ReadCompletions() ([]Completion, error)
}

// PendingFlip is a present request waiting for its completion.
type PendingFlip struct {
	Token       uint64
	Buffer      *buffer.Buffer
	Framebuffer uint32
	Submitted   time.Time
}

// Config for New. Chain, Cache, Renderer and Presenter are required.
type Config struct {
	Chain     *swapchain.Chain
	Cache     *binding.Cache
	Renderer  render.Renderer
	Presenter Presenter

	// Quit sources end the loop when readable.
	Quit     []Waitable
	Reporter Reporter

	// DrainTimeout bounds how long the loop waits for an outstanding flip
	// after termination was requested. Zero waits until the flip completed.
	DrainTimeout time.Duration
	Logger       logx.LoggerProvider

	// Now replaces time.Now for frame statistics.
	Now func() time.Time
}

// Scheduler is the flip loop. It is not safe for concurrent use.
type Scheduler struct {
	chain        *swapchain.Chain
	cache        *binding.Cache
	renderer     render.Renderer
	presenter    Presenter
	quit         []Waitable
	reporter     Reporter
	drainTimeout time.Duration
	logger       logx.LoggerProvider
	frameLog     logx.Throttle
	clock        clock

	pending     *PendingFlip
	token       uint64
	submits     uint64
	completions uint64
	discarded   uint64
	running     bool
}

func New(cfg Config) (*Scheduler, error) {
	if cfg.Chain == nil || cfg.Cache == nil || cfg.Renderer == nil || cfg.Presenter == nil {
		return nil, errors.NilParam()
	}
	if cfg.DrainTimeout < 0 {
		cfg.DrainTimeout = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = logx.Discard
	}
	return &Scheduler{
		chain:        cfg.Chain,
		cache:        cfg.Cache,
		renderer:     cfg.Renderer,
		presenter:    cfg.Presenter,
		quit:         cfg.Quit,
		reporter:     cfg.Reporter,
		drainTimeout: cfg.DrainTimeout,
		logger:       cfg.Logger,
		frameLog:     logx.Throttle{Interval: time.Second},
		clock:        clock{now: cfg.Now},
	}, nil
}

// Start submits the first present request for the front buffer, which must
// already hold rendered content.
func (s *Scheduler) Start() error {
	if s == nil {
		return errors.NilReceiver()
	}
	front := s.chain.Front()
	fb, err := s.cache.Resolve(front)
	if err != nil {
		return err
	}
	return s.submit(front, fb)
}

func (s *Scheduler) submit(buf *buffer.Buffer, fb uint32) error {
	if s.pending != nil {
		return errors.Kind(errors.ErrPresent, errors.ErrFlipPending)
	}
	s.token++
	if err := s.presenter.Present(fb, s.token); err != nil {
		return errors.Kind(errors.ErrPresent, errors.WrapPrefix(err, `present `+buf.String(), 0))
	}
	if err := s.chain.BeginFlip(); err != nil {
		return errors.Kind(errors.ErrPresent, err)
	}
	s.pending = &PendingFlip{
		Token:       s.token,
		Buffer:      buf,
		Framebuffer: fb,
		Submitted:   s.clock.time(),
	}
	s.submits++
	return nil
}

// Run waits for completions and termination. Every completion advances the
// loop by one frame. When a quit source becomes readable or ctx is done, no
// further frame is submitted; Run waits for the outstanding flip, discards its
// completion and returns. Any error aborts the loop.
func (s *Scheduler) Run(ctx context.Context) (err error) {
	if s == nil {
		return errors.NilReceiver()
	}
	if s.running {
		return errors.New(`flip loop already running`)
	}
	s.running = true
	defer func() { s.running = false }()

	done, err := quit.Context(ctx)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, done.Close()) }()

	fds := make([]int, 0, len(s.quit)+2)
	fds = append(fds, done.Fd())
	for _, q := range s.quit {
		if q != nil {
			fds = append(fds, q.Fd())
		}
	}
	presenterIdx := len(fds)
	fds = append(fds, s.presenter.Fd())

	s.clock.reset()
	logx.Debug(`flip loop started`, s.logger, `buffers`, s.chain.Len())
loop:
	for {
		ready, err := wait(fds, -1)
		if err != nil {
			// abandon the outstanding flip only after it completed
			return errors.Join(err, s.drain())
		}
		for i := 0; i < presenterIdx; i++ {
			if ready[i] {
				break loop
			}
		}
		if ready[presenterIdx] {
			if err := s.dispatch(); err != nil {
				return errors.Join(err, s.drain())
			}
		}
	}
	logx.Debug(`flip loop stopping`, s.logger, `frames`, s.completions, `pending`, s.pending != nil)
	return s.drain()
}

func (s *Scheduler) dispatch() error {
	comps, err := s.presenter.ReadCompletions()
	if err != nil {
		return errors.Kind(errors.ErrPresent, err)
	}
	for _, c := range comps {
		if err := s.complete(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) complete(c Completion) error {
	if s.pending == nil || c.Token != s.pending.Token {
		return errors.Kindf(errors.ErrPresent, `unexpected completion token %d (pending: %v)`, c.Token, s.pendingToken())
	}
	if err := s.chain.EndFlip(); err != nil {
		return errors.Kind(errors.ErrPresent, err)
	}
	s.pending = nil
	s.completions++
	stats := s.clock.tick()
	if s.reporter != nil {
		s.reporter(stats)
	}
	s.frameLog.Debug(`flip completed`, s.logger, s.clock.last,
		`frames`, stats.Frames, `sequence`, c.Sequence, `fps`, stats.InstantFPS())

	back := s.chain.Back()
	if err := s.renderer.Paint(back); err != nil {
		return errors.Kind(errors.ErrRender, errors.WrapPrefix(err, `paint `+back.String(), 0))
	}
	fb, err := s.cache.Resolve(back)
	if err != nil {
		return err
	}
	if err := s.submit(back, fb); err != nil {
		return err
	}
	// front names the buffer in flight from here on
	s.chain.Advance()
	return nil
}

// drain waits until no present request is outstanding. Completions received
// here are discarded. Without a drain timeout it blocks until the presenter
// reports the outstanding flip.
func (s *Scheduler) drain() error {
	if s.pending == nil {
		return nil
	}
	fds := []int{s.presenter.Fd()}
	var deadline time.Time
	if s.drainTimeout > 0 {
		deadline = time.Now().Add(s.drainTimeout)
	}
	for s.pending != nil {
		remaining := time.Duration(-1)
		if !deadline.IsZero() {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				return errors.Kindf(errors.ErrDrainTimeout, `flip token %d outstanding after %s`, s.pending.Token, s.drainTimeout)
			}
		}
		ready, err := wait(fds, remaining)
		if err != nil {
			return err
		}
		if !ready[0] {
			continue
		}
		comps, err := s.presenter.ReadCompletions()
		if err != nil {
			return errors.Kind(errors.ErrPresent, err)
		}
		for _, c := range comps {
			if s.pending == nil || c.Token != s.pending.Token {
				logx.Warn(`ignoring stray completion`, s.logger, `token`, c.Token)
				continue
			}
			if err := s.chain.EndFlip(); err != nil {
				return errors.Kind(errors.ErrPresent, err)
			}
			logx.Debug(`discarded completion of drained flip`, s.logger, `token`, c.Token, `buffer`, s.pending.Buffer.ID())
			s.pending = nil
			s.discarded++
		}
	}
	return nil
}

func (s *Scheduler) pendingToken() any {
	if s.pending == nil {
		return nil
	}
	return s.pending.Token
}

// Pending returns the outstanding present request or nil.
func (s *Scheduler) Pending() *PendingFlip {
	if s == nil || s.pending == nil {
		return nil
	}
	p := *s.pending
	return &p
}

// Counts returns the number of submitted presents, handled completions and
// completions discarded while draining.
func (s *Scheduler) Counts() (submits, completions, discarded uint64) {
	if s == nil {
		return 0, 0, 0
	}
	return s.submits, s.completions, s.discarded
}

// Stats returns the latest frame statistics.
func (s *Scheduler) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return s.clock.stats
}
