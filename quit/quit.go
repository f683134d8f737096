// Package quit provides termination sources that can be multiplexed with
// display events through a single poll(2) call. Every source exposes a file
// descriptor that becomes readable once termination was requested.
package quit

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/srlehn/drmswap/internal/errors"
)

// Source is a termination source.
type Source interface {
	Fd() int
	Close() error
}

// Pipe is a self-pipe. It becomes readable after Trigger.
type Pipe struct {
	mu      sync.Mutex
	r, w    int
	closing bool // set by the first Close
	closed  bool
	stop    chan struct{}
	stopped sync.WaitGroup
	onClose func()
}

var _ Source = (*Pipe)(nil)

// New returns a Pipe that is only triggered manually.
func New() (*Pipe, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, errors.New(err)
	}
	return &Pipe{r: fds[0], w: fds[1], stop: make(chan struct{})}, nil
}

// Fd is the read end of the pipe.
func (p *Pipe) Fd() int {
	if p == nil {
		return -1
	}
	return p.r
}

// Trigger makes the pipe readable. Triggering repeatedly or after Close is a
// no-op.
func (p *Pipe) Trigger() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	// a full pipe is readable already
	_, _ = unix.Write(p.w, []byte{0})
}

// Triggered reports whether the pipe is readable, without consuming it.
func (p *Pipe) Triggered() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	pfd := []unix.PollFd{{Fd: int32(p.r), Events: unix.POLLIN}}
	n, err := unix.Poll(pfd, 0)
	return err == nil && n > 0 && pfd[0].Revents&unix.POLLIN != 0
}

// Close stops the watching goroutine, if any, and closes the pipe.
func (p *Pipe) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	if p.closing {
		p.mu.Unlock()
		return nil
	}
	p.closing = true
	close(p.stop)
	p.mu.Unlock()
	p.stopped.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.onClose != nil {
		p.onClose()
	}
	errR := unix.Close(p.r)
	errW := unix.Close(p.w)
	if err := errors.Join(errR, errW); err != nil {
		return err
	}
	return nil
}

// watch triggers p when ch yields or is closed.
func watch[T any](p *Pipe, ch <-chan T) {
	p.stopped.Add(1)
	go func() {
		defer p.stopped.Done()
		select {
		case <-ch:
			p.Trigger()
		case <-p.stop:
		}
	}()
}

// Context returns a Pipe triggered when ctx is done.
func Context(ctx context.Context) (*Pipe, error) {
	if ctx == nil {
		return nil, errors.NilParam()
	}
	p, err := New()
	if err != nil {
		return nil, err
	}
	watch(p, ctx.Done())
	return p, nil
}

// Signal returns a Pipe triggered when one of sigs is received.
// Without arguments SIGINT and SIGTERM are used.
func Signal(sigs ...os.Signal) (*Pipe, error) {
	if len(sigs) == 0 {
		sigs = []os.Signal{unix.SIGINT, unix.SIGTERM}
	}
	p, err := New()
	if err != nil {
		return nil, err
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	p.onClose = func() { signal.Stop(ch) }
	watch(p, ch)
	return p, nil
}
