package display

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/flip"
	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/internal/logx"
)

// Sim is a display without hardware. Buffers live in process memory and
// present requests complete after one frame interval of the mode, signalled
// through a pipe like the events of a DRM device.
type Sim struct {
	mode   Mode
	heap   *buffer.Heap
	logger logx.LoggerProvider

	mu         sync.Mutex
	r, w       int
	closed     bool
	nextFB     uint32
	fbs        map[uint32]buffer.Geometry
	scanout    uint32
	configured bool
	timer      *time.Timer
	queue      []flip.Completion
	sequence   uint32
	start      time.Time
}

var _ Target = (*Sim)(nil)

// DefaultSimMode is used by NewSim for the zero ModeSpec.
var DefaultSimMode = Mode{Width: 640, Height: 480, Refresh: 60, Name: `sim`}

// NewSim returns a simulated display with the mode selected by opts.
func NewSim(opts Options) (*Sim, error) {
	mode := DefaultSimMode
	if opts.Mode.Width != 0 && opts.Mode.Height != 0 {
		mode.Width, mode.Height = opts.Mode.Width, opts.Mode.Height
	}
	if opts.Mode.Refresh != 0 {
		mode.Refresh = opts.Mode.Refresh
	}
	if opts.Logger == nil {
		opts.Logger = logx.Discard
	}
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, errors.Kind(errors.ErrConfig, errors.New(err))
	}
	logx.Info(`display selected`, opts.Logger, `device`, `sim`, `mode`, mode.String())
	return &Sim{
		mode:   mode,
		heap:   buffer.NewHeap(),
		logger: opts.Logger,
		r:      fds[0],
		w:      fds[1],
		fbs:    make(map[uint32]buffer.Geometry),
		start:  time.Now(),
	}, nil
}

func (s *Sim) Mode() Mode                  { return s.mode }
func (s *Sim) Allocator() buffer.Allocator { return s.heap }
func (s *Sim) Fd() int                     { return s.r }

func (s *Sim) AddFramebuffer(geom buffer.Geometry) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errors.New(errors.ErrClosed)
	}
	if geom.Width == 0 || geom.Height == 0 || geom.Stride < geom.Width*uint32(geom.BPP/8) {
		return 0, errors.Errorf(`invalid framebuffer geometry %+v`, geom)
	}
	s.nextFB++
	s.fbs[s.nextFB] = geom
	return s.nextFB, nil
}

func (s *Sim) RemoveFramebuffer(fb uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fbs[fb]; !ok {
		return errors.Errorf(`unknown framebuffer %d`, fb)
	}
	delete(s.fbs, fb)
	if s.scanout == fb {
		s.scanout = 0
	}
	return nil
}

// Framebuffers is the number of registered framebuffers.
func (s *Sim) Framebuffers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fbs)
}

// Scanout is the framebuffer currently shown, 0 if none.
func (s *Sim) Scanout() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanout
}

func (s *Sim) Configure(fb uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fbs[fb]; !ok {
		return errors.Kindf(errors.ErrConfig, `unknown framebuffer %d`, fb)
	}
	s.scanout = fb
	s.configured = true
	return nil
}

func (s *Sim) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanout = 0
	s.configured = false
	return nil
}

func (s *Sim) Present(fb uint32, token uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return errors.New(errors.ErrClosed)
	case !s.configured:
		return errors.New(`crtc not configured`)
	case s.timer != nil:
		return errors.New(unix.EBUSY)
	}
	if _, ok := s.fbs[fb]; !ok {
		return errors.New(unix.EINVAL)
	}
	s.timer = time.AfterFunc(s.mode.FrameInterval(), func() { s.vblank(fb, token) })
	return nil
}

func (s *Sim) vblank(fb uint32, token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.timer = nil
	s.sequence++
	if _, ok := s.fbs[fb]; ok {
		s.scanout = fb
	}
	s.queue = append(s.queue, flip.Completion{
		Token:    token,
		Sequence: s.sequence,
		Time:     time.Since(s.start),
	})
	_, _ = unix.Write(s.w, []byte{0})
}

func (s *Sim) ReadCompletions() ([]flip.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New(errors.ErrClosed)
	}
	var b [64]byte
	for {
		n, err := unix.Read(s.r, b[:])
		if n <= 0 || err != nil {
			break
		}
	}
	comps := s.queue
	s.queue = nil
	return comps, nil
}

func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if n := s.heap.Live(); n > 0 {
		logx.Warn(`closing display with live buffers`, s.logger, `count`, n)
	}
	if n := len(s.fbs); n > 0 {
		logx.Warn(`closing display with registered framebuffers`, s.logger, `count`, n)
	}
	if err := errors.Join(unix.Close(s.r), unix.Close(s.w)); err != nil {
		return err
	}
	return nil
}
