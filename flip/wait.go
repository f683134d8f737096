package flip

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/srlehn/drmswap/internal/errors"
)

// Waitable is a source that becomes readable when it needs attention.
type Waitable interface{ Fd() int }

// wait blocks until at least one of fds is readable or timeout passes.
// A negative timeout blocks indefinitely. The result is indexed like fds.
func wait(fds []int, timeout time.Duration) ([]bool, error) {
	pfds := make([]unix.PollFd, len(fds))
	for i, fd := range fds {
		pfds[i] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
	}
	ms := -1
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		if timeout >= 0 {
			ms = int(time.Until(deadline).Milliseconds())
			if ms < 0 {
				ms = 0
			}
		}
		n, err := unix.Poll(pfds, ms)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return nil, errors.New(err)
		}
		ready := make([]bool, len(fds))
		if n == 0 {
			return ready, nil
		}
		for i := range pfds {
			if pfds[i].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
				ready[i] = true
			}
			if pfds[i].Revents&unix.POLLNVAL != 0 {
				return nil, errors.Errorf(`poll: invalid file descriptor %d`, fds[i])
			}
		}
		return ready, nil
	}
}
