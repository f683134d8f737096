package drmswap

import (
	"log/slog"
	"os"
	"time"

	"github.com/srlehn/drmswap/display"
	"github.com/srlehn/drmswap/flip"
	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/render"
)

type Option interface {
	ApplyOption(s *Session) error
}

var _ Option = (OptFunc)(nil)

type OptFunc func(*Session) error

func (o OptFunc) ApplyOption(s *Session) error { return o(s) }

var _ Option = (Options)(nil)

type Options []Option

func (o Options) ApplyOption(s *Session) error { return s.setOptions([]Option(o)...) }

func (s *Session) setOptions(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.ApplyOption(s); err != nil {
			return errors.New(err)
		}
	}
	return nil
}

// SetTarget uses an already opened display. The session takes ownership and
// closes it on teardown.
func SetTarget(t display.Target) Option {
	return OptFunc(func(s *Session) error {
		if t == nil {
			return errors.NilParam()
		}
		s.target = t
		s.closer.AddClosers(t)
		return nil
	})
}

// SetDevice opens the DRM device at path. opts selects connector and mode.
func SetDevice(path string, opts display.Options) Option {
	return OptFunc(func(s *Session) error {
		s.device = path
		s.displayOpts = opts
		s.sim = false
		return nil
	})
}

// SetSimulation presents to a simulated display instead of a DRM device.
func SetSimulation(opts display.Options) Option {
	return OptFunc(func(s *Session) error {
		s.displayOpts = opts
		s.sim = true
		return nil
	})
}

// SetBufferCount sets the number of scanout buffers, 1 or 2.
// A single buffer is drawn while it is displayed and may tear.
func SetBufferCount(n int) Option {
	return OptFunc(func(s *Session) error {
		s.bufferCount = n
		return nil
	})
}

func SetRenderer(r render.Renderer) Option {
	return OptFunc(func(s *Session) error {
		if r == nil {
			return errors.NilParam()
		}
		s.renderer = r
		return nil
	})
}

// SetRendererName creates the registered renderer name once the display size
// is known. Width and Height of opts are overwritten.
func SetRendererName(name string, opts render.Options) Option {
	return OptFunc(func(s *Session) error {
		s.rendererName = name
		s.rendererOpts = opts
		return nil
	})
}

func SetSLogger(h slog.Handler, enable bool) Option {
	return OptFunc(func(s *Session) error {
		if enable {
			if h == nil {
				s.logger = slog.Default()
			} else {
				s.logger = slog.New(h)
			}
		} else {
			s.logger = nil
		}
		return nil
	})
}

// SetLogFile appends text logs at level to the file at path. The file is
// closed at the very end of the teardown.
func SetLogFile(path string, level slog.Level) Option {
	return OptFunc(func(s *Session) error {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.New(err)
		}
		s.closer.AddClosers(f)
		s.logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level, AddSource: true}))
		return nil
	})
}

// SetQuitSources adds sources that end Run when readable. They stay owned by
// the caller.
func SetQuitSources(srcs ...flip.Waitable) Option {
	return OptFunc(func(s *Session) error {
		s.quit = append(s.quit, srcs...)
		return nil
	})
}

func SetReporter(r flip.Reporter) Option {
	return OptFunc(func(s *Session) error {
		s.reporter = r
		return nil
	})
}

// SetDrainTimeout bounds the wait for the last flip at termination. The
// default of zero waits until the flip completed, so teardown never releases
// a buffer that may still be scanned out.
func SetDrainTimeout(d time.Duration) Option {
	return OptFunc(func(s *Session) error {
		s.drainTimeout = d
		return nil
	})
}

// SetConsoleGraphics switches the virtual console tty to graphics mode for the
// lifetime of the session. Nothing happens if tty is no Linux console.
func SetConsoleGraphics(tty *os.File) Option {
	return OptFunc(func(s *Session) error {
		s.console = tty
		return nil
	})
}
